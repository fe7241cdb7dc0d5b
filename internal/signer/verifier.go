package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

// SignatureLength is the only accepted encoding: 32-byte r, 32-byte s, 1-byte v.
const SignatureLength = 65

// RecoverListingSigner recovers the address that signed the listing under the
// given domain binding. A malformed signature is rejected outright; it never
// resolves to a plausible-looking address.
func RecoverListingSigner(p *ListParams, sig []byte, chainID int64, verifyingContract common.Address) (common.Address, error) {
	hash, err := typedDataHash(listingTypedData(p, chainID, verifyingContract))
	if err != nil {
		return common.Address{}, apperrors.New(apperrors.ErrInternal, "failed to hash typed data", err)
	}
	return recoverSigner(hash, sig)
}

// RecoverOfferSigner recovers the address that signed the offer.
func RecoverOfferSigner(p *OfferParams, sig []byte, chainID int64, verifyingContract common.Address) (common.Address, error) {
	hash, err := typedDataHash(offerTypedData(p, chainID, verifyingContract))
	if err != nil {
		return common.Address{}, apperrors.New(apperrors.ErrInternal, "failed to hash typed data", err)
	}
	return recoverSigner(hash, sig)
}

func recoverSigner(hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, apperrors.New(apperrors.ErrMalformedSignature, "invalid signature length", nil)
	}
	// Normalize V to 0/1 for recovery; reject anything outside 0/1/27/28.
	raw := make([]byte, SignatureLength)
	copy(raw, sig)
	if raw[64] >= 27 {
		raw[64] -= 27
	}
	if raw[64] > 1 {
		return common.Address{}, apperrors.New(apperrors.ErrMalformedSignature, "invalid recovery id", nil)
	}
	pub, err := crypto.SigToPub(hash, raw)
	if err != nil {
		return common.Address{}, apperrors.New(apperrors.ErrMalformedSignature, "signature recovery failed", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func typedDataHash(data apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, err
	}
	return hash, nil
}

func listingTypedData(p *ListParams, chainID int64, verifyingContract common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainFields(),
			"ListParams": {
				{Name: "tokenAddress", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "price", Type: "uint256"},
				{Name: "seller", Type: "address"},
			},
		},
		PrimaryType: "ListParams",
		Domain:      domain(ListingDomainName, chainID, verifyingContract),
		Message: apitypes.TypedDataMessage{
			"tokenAddress": p.TokenAddress.Hex(),
			"tokenId":      u256(p.TokenID),
			"price":        u256(p.Price),
			"seller":       p.Seller.Hex(),
		},
	}
}

func offerTypedData(p *OfferParams, chainID int64, verifyingContract common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainFields(),
			"OfferParams": {
				{Name: "tokenAddress", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "price", Type: "uint256"},
				{Name: "bidder", Type: "address"},
			},
		},
		PrimaryType: "OfferParams",
		Domain:      domain(OfferDomainName, chainID, verifyingContract),
		Message: apitypes.TypedDataMessage{
			"tokenAddress": p.TokenAddress.Hex(),
			"tokenId":      u256(p.TokenID),
			"price":        u256(p.Price),
			"bidder":       p.Bidder.Hex(),
		},
	}
}

func domainFields() []apitypes.Type {
	return []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}
}

func domain(name string, chainID int64, verifyingContract common.Address) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              name,
		Version:           DomainVersion,
		ChainId:           (*math.HexOrDecimal256)(big.NewInt(chainID)),
		VerifyingContract: verifyingContract.Hex(),
	}
}

func u256(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}
