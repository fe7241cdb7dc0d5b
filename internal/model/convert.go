package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

// etherDecimals is the payment unit scale: amounts cross the API in ether,
// the engine works in wei.
const etherDecimals = 18

func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, apperrors.NewInvalidRequest("invalid address: " + s)
	}
	return common.HexToAddress(s), nil
}

func ParseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, apperrors.NewInvalidRequest("invalid token id: " + s)
	}
	return id, nil
}

// ParseAmount converts an ether-denominated decimal string to wei.
func ParseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperrors.NewInvalidRequest("invalid amount: " + s)
	}
	if d.IsNegative() {
		return nil, apperrors.NewInvalidRequest("amount must not be negative")
	}
	wei := d.Shift(etherDecimals)
	if !wei.IsInteger() {
		return nil, apperrors.NewInvalidRequest("amount has more than 18 decimal places")
	}
	return wei.BigInt(), nil
}

// FormatAmount renders wei as an ether-denominated decimal string.
func FormatAmount(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}

// ParseSignature decodes a 0x-prefixed hex signature. Encoding problems are
// malformed-signature errors, same as a wrong byte length further down.
func ParseSignature(s string) ([]byte, error) {
	sig, err := hexutil.Decode(s)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrMalformedSignature, "invalid signature encoding", err)
	}
	return sig, nil
}
