package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Typed-data domain constants. The listing and offer variants sign under
// different domain names, so a listing signature can never be presented as an
// offer or vice versa.
const (
	ListingDomainName = "Marketplace"
	OfferDomainName   = "Offer"
	DomainVersion     = "1.0.0"
)

var (
	// eip712DomainTypeHash is the keccak256 hash of the EIP712Domain type definition
	eip712DomainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

	listParamsTypeHash  = crypto.Keccak256Hash([]byte("ListParams(address tokenAddress,uint256 tokenId,uint256 price,address seller)"))
	offerParamsTypeHash = crypto.Keccak256Hash([]byte("OfferParams(address tokenAddress,uint256 tokenId,uint256 price,address bidder)"))
)

// ListParams is a seller's signed listing: an offer to sell one asset at a
// fixed price. Changing any field invalidates the signature.
type ListParams struct {
	TokenAddress common.Address
	TokenID      *big.Int
	Price        *big.Int
	Seller       common.Address
}

// OfferParams is a bidder's signed offer to buy one asset at a fixed price.
type OfferParams struct {
	TokenAddress common.Address
	TokenID      *big.Int
	Price        *big.Int
	Bidder       common.Address
}

// Domain is a fully-bound EIP-712 domain with a pre-calculated separator.
type Domain struct {
	name      string
	chainID   *big.Int
	contract  common.Address
	separator common.Hash
}

func NewListingDomain(chainID int64, verifyingContract common.Address) Domain {
	return newDomain(ListingDomainName, chainID, verifyingContract)
}

func NewOfferDomain(chainID int64, verifyingContract common.Address) Domain {
	return newDomain(OfferDomainName, chainID, verifyingContract)
}

func newDomain(name string, chainID int64, contract common.Address) Domain {
	// keccak256(abi.encode(domainTypeHash, keccak256(name), keccak256(version), chainId, verifyingContract))
	data := make([]byte, 32*5)
	copy(data[0:32], eip712DomainTypeHash.Bytes())
	copy(data[32:64], crypto.Keccak256([]byte(name)))
	copy(data[64:96], crypto.Keccak256([]byte(DomainVersion)))
	copy(data[96:128], math.U256Bytes(big.NewInt(chainID)))
	copy(data[128+12:160], contract.Bytes()) // address left-padded to 32 bytes

	return Domain{
		name:      name,
		chainID:   big.NewInt(chainID),
		contract:  contract,
		separator: crypto.Keccak256Hash(data),
	}
}

func (d Domain) ChainID() *big.Int {
	return new(big.Int).Set(d.chainID)
}

func (d Domain) VerifyingContract() common.Address {
	return d.contract
}

// ListingDigest returns the EIP-191 digest to be signed for a listing:
// keccak256("\x19\x01" || domainSeparator || hashStruct(params)).
func (d Domain) ListingDigest(p *ListParams) []byte {
	return d.digest(hashListParams(p))
}

// OfferDigest returns the signing digest for an offer.
func (d Domain) OfferDigest(p *OfferParams) []byte {
	return d.digest(hashOfferParams(p))
}

func (d Domain) digest(hashStruct []byte) []byte {
	return crypto.Keccak256([]byte{0x19, 0x01}, d.separator.Bytes(), hashStruct)
}

// hashStruct(ListParams): keccak256(abi.encode(typeHash, tokenAddress, tokenId, price, seller))
func hashListParams(p *ListParams) []byte {
	return hashTerms(listParamsTypeHash, p.TokenAddress, p.TokenID, p.Price, p.Seller)
}

func hashOfferParams(p *OfferParams) []byte {
	return hashTerms(offerParamsTypeHash, p.TokenAddress, p.TokenID, p.Price, p.Bidder)
}

func hashTerms(typeHash common.Hash, token common.Address, tokenID, price *big.Int, counterparty common.Address) []byte {
	data := make([]byte, 32*5)
	copy(data[0:32], typeHash.Bytes())
	copy(data[32+12:64], token.Bytes())
	if tokenID != nil {
		copy(data[64:96], math.U256Bytes(tokenID))
	}
	if price != nil {
		copy(data[96:128], math.U256Bytes(price))
	}
	copy(data[128+12:160], counterparty.Bytes())
	return crypto.Keccak256(data)
}
