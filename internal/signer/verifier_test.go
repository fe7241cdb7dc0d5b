package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

var testContract = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

func testListing(seller common.Address) *ListParams {
	return &ListParams{
		TokenAddress: common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		TokenID:      big.NewInt(7),
		Price:        big.NewInt(95e16),
		Seller:       seller,
	}
}

func testOffer(bidder common.Address) *OfferParams {
	return &OfferParams{
		TokenAddress: common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		TokenID:      big.NewInt(7),
		Price:        big.NewInt(95e16),
		Bidder:       bidder,
	}
}

func TestRecoverListingSigner_RoundTrip(t *testing.T) {
	s := newTestSigner(t, 1)
	listing := testListing(s.Address())

	sig, err := s.SignListing(listing, testContract)
	require.NoError(t, err)

	recovered, err := RecoverListingSigner(listing, sig, 1, testContract)
	assert.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)
}

func TestRecoverOfferSigner_RoundTrip(t *testing.T) {
	s := newTestSigner(t, 137)
	offer := testOffer(s.Address())

	sig, err := s.SignOffer(offer, testContract)
	require.NoError(t, err)

	recovered, err := RecoverOfferSigner(offer, sig, 137, testContract)
	assert.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)
}

// Tampering with any field of the signed terms must shift the recovered
// address away from the signer.
func TestRecoverListingSigner_TamperedTerms(t *testing.T) {
	s := newTestSigner(t, 1)
	listing := testListing(s.Address())

	sig, err := s.SignListing(listing, testContract)
	require.NoError(t, err)

	cases := map[string]*ListParams{
		"token address": {
			TokenAddress: common.HexToAddress("0xbb"),
			TokenID:      listing.TokenID,
			Price:        listing.Price,
			Seller:       listing.Seller,
		},
		"token id": {
			TokenAddress: listing.TokenAddress,
			TokenID:      big.NewInt(8),
			Price:        listing.Price,
			Seller:       listing.Seller,
		},
		"price": {
			TokenAddress: listing.TokenAddress,
			TokenID:      listing.TokenID,
			Price:        big.NewInt(1),
			Seller:       listing.Seller,
		},
		"seller": {
			TokenAddress: listing.TokenAddress,
			TokenID:      listing.TokenID,
			Price:        listing.Price,
			Seller:       common.HexToAddress("0xcc"),
		},
	}

	for name, tampered := range cases {
		t.Run(name, func(t *testing.T) {
			recovered, err := RecoverListingSigner(tampered, sig, 1, testContract)
			assert.NoError(t, err)
			assert.NotEqual(t, s.Address(), recovered)
		})
	}
}

func TestRecoverListingSigner_DomainBinding(t *testing.T) {
	s := newTestSigner(t, 1)
	listing := testListing(s.Address())

	sig, err := s.SignListing(listing, testContract)
	require.NoError(t, err)

	t.Run("wrong chain id", func(t *testing.T) {
		recovered, err := RecoverListingSigner(listing, sig, 137, testContract)
		assert.NoError(t, err)
		assert.NotEqual(t, s.Address(), recovered)
	})

	t.Run("wrong contract", func(t *testing.T) {
		recovered, err := RecoverListingSigner(listing, sig, 1, common.HexToAddress("0xdead"))
		assert.NoError(t, err)
		assert.NotEqual(t, s.Address(), recovered)
	})
}

// A listing signature must never verify as an offer signature even over
// identical terms; the two domains are distinct.
func TestRecoverOfferSigner_ListingSignatureDoesNotCross(t *testing.T) {
	s := newTestSigner(t, 1)
	listing := testListing(s.Address())

	sig, err := s.SignListing(listing, testContract)
	require.NoError(t, err)

	recovered, err := RecoverOfferSigner(testOffer(s.Address()), sig, 1, testContract)
	assert.NoError(t, err)
	assert.NotEqual(t, s.Address(), recovered)
}

func TestRecoverListingSigner_Malformed(t *testing.T) {
	s := newTestSigner(t, 1)
	listing := testListing(s.Address())

	sig, err := s.SignListing(listing, testContract)
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		_, err := RecoverListingSigner(listing, sig[:64], 1, testContract)
		assert.True(t, apperrors.Is(err, apperrors.ErrMalformedSignature))
	})

	t.Run("too long", func(t *testing.T) {
		_, err := RecoverListingSigner(listing, append(append([]byte{}, sig...), 0x00), 1, testContract)
		assert.True(t, apperrors.Is(err, apperrors.ErrMalformedSignature))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := RecoverListingSigner(listing, nil, 1, testContract)
		assert.True(t, apperrors.Is(err, apperrors.ErrMalformedSignature))
	})

	t.Run("bad recovery id", func(t *testing.T) {
		bad := append([]byte{}, sig...)
		bad[64] = 29
		_, err := RecoverListingSigner(listing, bad, 1, testContract)
		assert.True(t, apperrors.Is(err, apperrors.ErrMalformedSignature))
	})
}

// The manual digest path used for signing and the library path used for
// verification must agree on every byte.
func TestDomainDigest_MatchesTypedDataHash(t *testing.T) {
	s := newTestSigner(t, 1)
	listing := testListing(s.Address())

	manual := NewListingDomain(1, testContract).ListingDigest(listing)
	library, err := typedDataHash(listingTypedData(listing, 1, testContract))
	require.NoError(t, err)
	assert.Equal(t, library, manual)

	offer := testOffer(s.Address())
	manual = NewOfferDomain(1, testContract).OfferDigest(offer)
	library, err = typedDataHash(offerTypedData(offer, 1, testContract))
	require.NoError(t, err)
	assert.Equal(t, library, manual)
}
