package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, chainID int64) *Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyHex := hexutil.Encode(crypto.FromECDSA(key))[2:]

	s, err := NewSigner(keyHex, chainID)
	require.NoError(t, err)
	return s
}

func TestSigner_SignListing(t *testing.T) {
	s := newTestSigner(t, 1)

	listing := &ListParams{
		TokenAddress: common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		TokenID:      big.NewInt(1),
		Price:        big.NewInt(1e18),
		Seller:       s.Address(),
	}

	sig, err := s.SignListing(listing, common.HexToAddress("0xbeef"))
	assert.NoError(t, err)
	assert.Equal(t, SignatureLength, len(sig))
	assert.Contains(t, []byte{27, 28}, sig[64])
}

func TestNewSigner_AcceptsHexPrefix(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyHex := hexutil.Encode(crypto.FromECDSA(key))

	s, err := NewSigner(keyHex, 1)
	assert.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())
}

func TestNewSigner_RejectsBadKey(t *testing.T) {
	_, err := NewSigner("", 1)
	assert.Error(t, err)

	_, err = NewSigner("not-a-key", 1)
	assert.Error(t, err)
}
