package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

func balanceOf(t *testing.T, l *PaymentLedger, owner common.Address) string {
	t.Helper()
	b, err := l.BalanceOf(owner)
	require.NoError(t, err)
	return b.String()
}

func TestPaymentLedger_MintAndBalance(t *testing.T) {
	l := NewPaymentLedger()

	assert.Equal(t, "0", balanceOf(t, l, alice))

	l.Mint(alice, big.NewInt(100))
	l.Mint(alice, big.NewInt(50))
	assert.Equal(t, "150", balanceOf(t, l, alice))
}

func TestPaymentLedger_Transfer(t *testing.T) {
	l := NewPaymentLedger()
	l.Mint(alice, big.NewInt(100))

	require.NoError(t, l.Transfer(alice, bob, big.NewInt(60)))
	assert.Equal(t, "40", balanceOf(t, l, alice))
	assert.Equal(t, "60", balanceOf(t, l, bob))

	err := l.Transfer(alice, bob, big.NewInt(41))
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientBalance))
	assert.Equal(t, "40", balanceOf(t, l, alice))
}

func TestPaymentLedger_BalanceCopyIsDetached(t *testing.T) {
	l := NewPaymentLedger()
	l.Mint(alice, big.NewInt(100))

	b, err := l.BalanceOf(alice)
	require.NoError(t, err)
	b.SetInt64(0)

	assert.Equal(t, "100", balanceOf(t, l, alice))
}

func TestPaymentLedger_TransferFrom(t *testing.T) {
	l := NewPaymentLedger()
	l.Mint(alice, big.NewInt(100))
	l.Approve(alice, operator, big.NewInt(80))

	t.Run("spends allowance", func(t *testing.T) {
		require.NoError(t, l.TransferFrom(operator, alice, bob, big.NewInt(30)))
		assert.Equal(t, "70", balanceOf(t, l, alice))
		assert.Equal(t, "30", balanceOf(t, l, bob))

		remaining, err := l.Allowance(alice, operator)
		require.NoError(t, err)
		assert.Equal(t, "50", remaining.String())
	})

	t.Run("allowance exhausted", func(t *testing.T) {
		err := l.TransferFrom(operator, alice, bob, big.NewInt(51))
		assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientAllowance))
	})

	t.Run("no allowance at all", func(t *testing.T) {
		err := l.TransferFrom(bob, alice, bob, big.NewInt(1))
		assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientAllowance))
	})
}

// Allowance is checked before balance, and a failed balance check leaves the
// allowance untouched.
func TestPaymentLedger_TransferFrom_BalanceShort(t *testing.T) {
	l := NewPaymentLedger()
	l.Mint(alice, big.NewInt(10))
	l.Approve(alice, operator, big.NewInt(100))

	err := l.TransferFrom(operator, alice, bob, big.NewInt(50))
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientBalance))

	remaining, err := l.Allowance(alice, operator)
	require.NoError(t, err)
	assert.Equal(t, "100", remaining.String())
}
