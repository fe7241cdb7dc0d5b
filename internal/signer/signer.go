package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds a private key and produces 65-byte r||s||v signatures over
// typed trade terms. It is what a seller or bidder runs off-line; the engine
// itself never holds keys.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID int64
}

func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKey),
		chainID: chainID,
	}, nil
}

// SignListing signs a listing for the engine deployed at verifyingContract.
func (s *Signer) SignListing(p *ListParams, verifyingContract common.Address) ([]byte, error) {
	domain := NewListingDomain(s.chainID, verifyingContract)
	return s.sign(domain.ListingDigest(p))
}

// SignOffer signs a bid for the engine deployed at verifyingContract.
func (s *Signer) SignOffer(p *OfferParams, verifyingContract common.Address) ([]byte, error) {
	domain := NewOfferDomain(s.chainID, verifyingContract)
	return s.sign(domain.OfferDigest(p))
}

func (s *Signer) sign(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, err
	}
	// crypto.Sign returns V as 0/1; wallets and the verifier speak 27/28.
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

func (s *Signer) ChainID() int64 {
	return s.chainID
}
