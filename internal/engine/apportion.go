package engine

import "math/big"

// bpsDenominator is the basis-point scale: 10000 = 100%.
const bpsDenominator = 10000

// PayoutSplit is the disjoint division of one gross sale amount. The three
// parts always sum exactly to the gross amount.
type PayoutSplit struct {
	Seller  *big.Int
	Market  *big.Int
	Royalty *big.Int
}

// Apportion splits gross between seller, marketplace and royalty payee.
// Marketplace and royalty shares truncate on integer division; the remainder
// stays with the seller, so no dust is lost or created. When the two rates
// together exceed 10000 bps the seller share comes back negative; callers
// must reject the settlement rather than execute such a split.
func Apportion(gross *big.Int, feeBps, royaltyBps uint32) PayoutSplit {
	denom := big.NewInt(bpsDenominator)

	market := new(big.Int).Mul(gross, big.NewInt(int64(feeBps)))
	market.Quo(market, denom)

	royalty := new(big.Int)
	if royaltyBps > 0 {
		royalty.Mul(gross, big.NewInt(int64(royaltyBps)))
		royalty.Quo(royalty, denom)
	}

	seller := new(big.Int).Sub(gross, market)
	seller.Sub(seller, royalty)

	return PayoutSplit{Seller: seller, Market: market, Royalty: royalty}
}
