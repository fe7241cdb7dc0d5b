package ledger

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

// PaymentLedger is an in-memory fungible-balance ledger with ERC20-like
// allowance semantics for the offer-acceptance path.
type PaymentLedger struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	// owner -> spender -> remaining allowance
	allowances map[common.Address]map[common.Address]*big.Int
}

func NewPaymentLedger() *PaymentLedger {
	return &PaymentLedger{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Mint credits an account out of thin air; deployment provisioning only.
func (l *PaymentLedger) Mint(to common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
}

func (l *PaymentLedger) BalanceOf(owner common.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[owner]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

// Approve sets the spender's allowance over the owner's funds.
func (l *PaymentLedger) Approve(owner, spender common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	spenders := l.allowances[owner]
	if spenders == nil {
		spenders = make(map[common.Address]*big.Int)
		l.allowances[owner] = spenders
	}
	spenders[spender] = new(big.Int).Set(amount)
}

func (l *PaymentLedger) Allowance(owner, spender common.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.allowances[owner][spender]; ok {
		return new(big.Int).Set(a), nil
	}
	return new(big.Int), nil
}

func (l *PaymentLedger) Transfer(from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom spends the operator's allowance over from's funds.
func (l *PaymentLedger) TransferFrom(operator, from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowance, ok := l.allowances[from][operator]
	if !ok || allowance.Cmp(amount) < 0 {
		return apperrors.New(apperrors.ErrInsufficientAllowance, "insufficient allowance", nil)
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (l *PaymentLedger) move(from, to common.Address, amount *big.Int) error {
	balance, ok := l.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return apperrors.New(apperrors.ErrInsufficientBalance, "insufficient balance", nil)
	}
	balance.Sub(balance, amount)
	l.credit(to, amount)
	return nil
}

func (l *PaymentLedger) credit(to common.Address, amount *big.Int) {
	if b, ok := l.balances[to]; ok {
		b.Add(b, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}
