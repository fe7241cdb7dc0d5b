package model

// ListingDTO mirrors the signed ListParams. Price is an ether-denominated
// decimal string; it is converted to wei before hashing, so it must match the
// signed value to the wei.
type ListingDTO struct {
	TokenAddress string `json:"token_address" binding:"required"`
	TokenID      string `json:"token_id" binding:"required"`
	Price        string `json:"price" binding:"required"`
	Seller       string `json:"seller" binding:"required"`
}

type OfferDTO struct {
	TokenAddress string `json:"token_address" binding:"required"`
	TokenID      string `json:"token_id" binding:"required"`
	Price        string `json:"price" binding:"required"`
	Bidder       string `json:"bidder" binding:"required"`
}

type BuyRequest struct {
	Buyer     string     `json:"buyer" binding:"required"`
	Listing   ListingDTO `json:"listing" binding:"required"`
	Signature string     `json:"signature" binding:"required"`
	Payment   string     `json:"payment" binding:"required"`
}

// BundleRequest deliberately has no length constraints on the slices; the
// engine owns the empty/mismatch/cap checks and their error codes.
type BundleRequest struct {
	Buyer      string       `json:"buyer" binding:"required"`
	Listings   []ListingDTO `json:"listings"`
	Signatures []string     `json:"signatures"`
	Payment    string       `json:"payment" binding:"required"`
}

type AcceptOfferRequest struct {
	Seller    string   `json:"seller" binding:"required"`
	Offer     OfferDTO `json:"offer" binding:"required"`
	Signature string   `json:"signature" binding:"required"`
}

type SetRoyaltyRequest struct {
	Collection string `json:"collection" binding:"required"`
	Payee      string `json:"payee" binding:"required"`
	RateBps    uint32 `json:"rate_bps"`
}

type RoyaltyResponse struct {
	Collection string `json:"collection"`
	Payee      string `json:"payee"`
	RateBps    uint32 `json:"rate_bps"`
}

type ConfigResponse struct {
	Admin           string `json:"admin"`
	EngineAddress   string `json:"engine_address"`
	ChainID         int64  `json:"chain_id"`
	MarketPayee     string `json:"market_payee"`
	MarketPercent   uint32 `json:"market_percent"`
	RoyaltyRegistry bool   `json:"royalty_registry"`
	PaymentToken    string `json:"payment_token"`
}

type SetAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

type SetPercentRequest struct {
	FeeBps uint32 `json:"fee_bps"`
}

// Provisioning requests for the in-memory ledgers.

type MintAssetRequest struct {
	Collection string `json:"collection" binding:"required"`
	TokenID    string `json:"token_id" binding:"required"`
	To         string `json:"to" binding:"required"`
}

type MintFundsRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type ApproveAssetRequest struct {
	Collection string `json:"collection" binding:"required"`
	TokenID    string `json:"token_id"`
	Owner      string `json:"owner" binding:"required"`
	All        bool   `json:"all"`
}

type ApproveFundsRequest struct {
	Owner  string `json:"owner" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type BalanceResponse struct {
	Address    string `json:"address"`
	BalanceWei string `json:"balance_wei"`
	Balance    string `json:"balance"`
}

type OwnerResponse struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	Owner      string `json:"owner"`
}
