package ledger

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

// AssetLedger is an in-memory custody ledger with ERC721-like semantics:
// per-token approvals (cleared on transfer) and per-operator blanket
// approvals. It backs the engine in tests and in deployments without an
// external custody system.
type AssetLedger struct {
	mu sync.RWMutex
	// collection -> tokenID -> owner
	owners map[common.Address]map[string]common.Address
	// collection -> tokenID -> approved operator
	tokenApprovals map[common.Address]map[string]common.Address
	// collection -> owner -> operator -> approved
	operatorApprovals map[common.Address]map[common.Address]map[common.Address]bool
}

func NewAssetLedger() *AssetLedger {
	return &AssetLedger{
		owners:            make(map[common.Address]map[string]common.Address),
		tokenApprovals:    make(map[common.Address]map[string]common.Address),
		operatorApprovals: make(map[common.Address]map[common.Address]map[common.Address]bool),
	}
}

func tokenKey(tokenID *big.Int) string {
	if tokenID == nil {
		return "0"
	}
	return tokenID.String()
}

// Mint assigns a fresh token to an owner. Minting an existing token is an error.
func (l *AssetLedger) Mint(collection common.Address, tokenID *big.Int, to common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tokens := l.owners[collection]
	if tokens == nil {
		tokens = make(map[string]common.Address)
		l.owners[collection] = tokens
	}
	key := tokenKey(tokenID)
	if _, exists := tokens[key]; exists {
		return apperrors.NewInvalidRequest("token already minted")
	}
	tokens[key] = to
	return nil
}

func (l *AssetLedger) OwnerOf(collection common.Address, tokenID *big.Int) (common.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	owner, ok := l.owners[collection][tokenKey(tokenID)]
	if !ok {
		return common.Address{}, apperrors.New(apperrors.ErrNotFound, "token does not exist", nil)
	}
	return owner, nil
}

// Approve grants a single-token approval; only the current owner may grant it.
func (l *AssetLedger) Approve(collection common.Address, tokenID *big.Int, caller, operator common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := tokenKey(tokenID)
	owner, ok := l.owners[collection][key]
	if !ok || owner != caller {
		return apperrors.New(apperrors.ErrNotOwner, "caller does not own token", nil)
	}
	approvals := l.tokenApprovals[collection]
	if approvals == nil {
		approvals = make(map[string]common.Address)
		l.tokenApprovals[collection] = approvals
	}
	approvals[key] = operator
	return nil
}

// SetApprovalForAll grants or revokes a blanket approval for one collection.
func (l *AssetLedger) SetApprovalForAll(collection, owner, operator common.Address, approved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := l.operatorApprovals[collection]
	if owners == nil {
		owners = make(map[common.Address]map[common.Address]bool)
		l.operatorApprovals[collection] = owners
	}
	operators := owners[owner]
	if operators == nil {
		operators = make(map[common.Address]bool)
		owners[owner] = operators
	}
	operators[operator] = approved
}

func (l *AssetLedger) IsApproved(collection common.Address, tokenID *big.Int, owner, operator common.Address) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	key := tokenKey(tokenID)
	actual, ok := l.owners[collection][key]
	if !ok {
		return false, apperrors.New(apperrors.ErrNotFound, "token does not exist", nil)
	}
	if actual != owner {
		return false, nil
	}
	if l.operatorApprovals[collection][owner][operator] {
		return true, nil
	}
	return l.tokenApprovals[collection][key] == operator, nil
}

// Transfer moves a token and clears its single-token approval.
func (l *AssetLedger) Transfer(collection common.Address, tokenID *big.Int, from, to common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := tokenKey(tokenID)
	owner, ok := l.owners[collection][key]
	if !ok {
		return apperrors.New(apperrors.ErrNotFound, "token does not exist", nil)
	}
	if owner != from {
		return apperrors.New(apperrors.ErrNotOwner, "transfer from wrong owner", nil)
	}
	l.owners[collection][key] = to
	delete(l.tokenApprovals[collection], key)
	return nil
}
