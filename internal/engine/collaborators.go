package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetLedger is the custody collaborator: it answers who owns an asset,
// whether the engine may move it, and performs the move. The engine never
// bookkeeps ownership itself.
type AssetLedger interface {
	OwnerOf(collection common.Address, tokenID *big.Int) (common.Address, error)
	IsApproved(collection common.Address, tokenID *big.Int, owner, operator common.Address) (bool, error)
	Transfer(collection common.Address, tokenID *big.Int, from, to common.Address) error
}

// PaymentLedger is the fungible-balance collaborator. Transfer moves a
// caller's own funds; TransferFrom moves third-party funds under an allowance
// previously granted to the operator.
type PaymentLedger interface {
	BalanceOf(owner common.Address) (*big.Int, error)
	Allowance(owner, spender common.Address) (*big.Int, error)
	Transfer(from, to common.Address, amount *big.Int) error
	TransferFrom(operator, from, to common.Address, amount *big.Int) error
}

// RoyaltySource resolves a collection to its royalty terms. The zero address
// with rate 0 means no royalty is configured.
type RoyaltySource interface {
	GetRoyalty(collection common.Address) (common.Address, uint32)
}
