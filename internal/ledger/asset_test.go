package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

var (
	collection = common.HexToAddress("0x2000000000000000000000000000000000000001")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob        = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	operator   = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func TestAssetLedger_MintAndOwnerOf(t *testing.T) {
	l := NewAssetLedger()
	id := big.NewInt(1)

	require.NoError(t, l.Mint(collection, id, alice))

	owner, err := l.OwnerOf(collection, id)
	assert.NoError(t, err)
	assert.Equal(t, alice, owner)

	err = l.Mint(collection, id, bob)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))

	_, err = l.OwnerOf(collection, big.NewInt(2))
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAssetLedger_Approve(t *testing.T) {
	l := NewAssetLedger()
	id := big.NewInt(1)
	require.NoError(t, l.Mint(collection, id, alice))

	err := l.Approve(collection, id, bob, operator)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotOwner))

	require.NoError(t, l.Approve(collection, id, alice, operator))

	approved, err := l.IsApproved(collection, id, alice, operator)
	assert.NoError(t, err)
	assert.True(t, approved)

	// Approval is per operator.
	approved, err = l.IsApproved(collection, id, alice, bob)
	assert.NoError(t, err)
	assert.False(t, approved)
}

func TestAssetLedger_ApprovalForAll(t *testing.T) {
	l := NewAssetLedger()
	require.NoError(t, l.Mint(collection, big.NewInt(1), alice))
	require.NoError(t, l.Mint(collection, big.NewInt(2), alice))

	l.SetApprovalForAll(collection, alice, operator, true)

	for _, id := range []*big.Int{big.NewInt(1), big.NewInt(2)} {
		approved, err := l.IsApproved(collection, id, alice, operator)
		assert.NoError(t, err)
		assert.True(t, approved)
	}

	l.SetApprovalForAll(collection, alice, operator, false)
	approved, err := l.IsApproved(collection, big.NewInt(1), alice, operator)
	assert.NoError(t, err)
	assert.False(t, approved)
}

func TestAssetLedger_IsApproved_WrongOwner(t *testing.T) {
	l := NewAssetLedger()
	id := big.NewInt(1)
	require.NoError(t, l.Mint(collection, id, alice))
	require.NoError(t, l.Approve(collection, id, alice, operator))

	approved, err := l.IsApproved(collection, id, bob, operator)
	assert.NoError(t, err)
	assert.False(t, approved)
}

func TestAssetLedger_Transfer(t *testing.T) {
	l := NewAssetLedger()
	id := big.NewInt(1)
	require.NoError(t, l.Mint(collection, id, alice))
	require.NoError(t, l.Approve(collection, id, alice, operator))

	err := l.Transfer(collection, id, bob, operator)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotOwner))

	require.NoError(t, l.Transfer(collection, id, alice, bob))

	owner, err := l.OwnerOf(collection, id)
	assert.NoError(t, err)
	assert.Equal(t, bob, owner)

	// Transfer clears the single-token approval.
	approved, err := l.IsApproved(collection, id, bob, operator)
	assert.NoError(t, err)
	assert.False(t, approved)
}
