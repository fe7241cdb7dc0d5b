package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opensettle/marketgate/internal/engine"
	"github.com/opensettle/marketgate/internal/event"
	"github.com/opensettle/marketgate/internal/ledger"
	"github.com/opensettle/marketgate/internal/model"
	"github.com/opensettle/marketgate/internal/registry"
	"github.com/opensettle/marketgate/internal/signer"
)

// SettlementService translates API requests into engine calls. Administrative
// operations run as the configured admin address; the HTTP layer has already
// authenticated the caller by admin key at this point.
type SettlementService struct {
	engine    *engine.Engine
	royalties *registry.Royalty
	assets    *ledger.AssetLedger
	payments  *ledger.PaymentLedger
}

func NewSettlementService(eng *engine.Engine, royalties *registry.Royalty, assets *ledger.AssetLedger, payments *ledger.PaymentLedger) *SettlementService {
	return &SettlementService{
		engine:    eng,
		royalties: royalties,
		assets:    assets,
		payments:  payments,
	}
}

func (s *SettlementService) Buy(ctx context.Context, req model.BuyRequest) (*event.Event, error) {
	buyer, err := model.ParseAddress(req.Buyer)
	if err != nil {
		return nil, err
	}
	listing, err := toListing(req.Listing)
	if err != nil {
		return nil, err
	}
	sig, err := model.ParseSignature(req.Signature)
	if err != nil {
		return nil, err
	}
	payment, err := model.ParseAmount(req.Payment)
	if err != nil {
		return nil, err
	}
	return s.engine.BuyNFT(ctx, buyer, listing, sig, payment)
}

func (s *SettlementService) BuyBundle(ctx context.Context, req model.BundleRequest) ([]*event.Event, error) {
	buyer, err := model.ParseAddress(req.Buyer)
	if err != nil {
		return nil, err
	}
	listings := make([]*signer.ListParams, 0, len(req.Listings))
	for _, dto := range req.Listings {
		l, err := toListing(dto)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	sigs := make([][]byte, 0, len(req.Signatures))
	for _, raw := range req.Signatures {
		sig, err := model.ParseSignature(raw)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	payment, err := model.ParseAmount(req.Payment)
	if err != nil {
		return nil, err
	}
	return s.engine.BuyBundle(ctx, buyer, listings, sigs, payment)
}

func (s *SettlementService) AcceptOffer(ctx context.Context, req model.AcceptOfferRequest) (*event.Event, error) {
	seller, err := model.ParseAddress(req.Seller)
	if err != nil {
		return nil, err
	}
	offer, err := toOffer(req.Offer)
	if err != nil {
		return nil, err
	}
	sig, err := model.ParseSignature(req.Signature)
	if err != nil {
		return nil, err
	}
	return s.engine.AcceptOffer(ctx, seller, offer, sig)
}

func (s *SettlementService) SetRoyalty(ctx context.Context, req model.SetRoyaltyRequest) error {
	collection, err := model.ParseAddress(req.Collection)
	if err != nil {
		return err
	}
	payee, err := model.ParseAddress(req.Payee)
	if err != nil {
		return err
	}
	return s.royalties.SetRoyalty(ctx, s.admin(), collection, payee, req.RateBps)
}

func (s *SettlementService) GetRoyalty(collectionHex string) (*model.RoyaltyResponse, error) {
	collection, err := model.ParseAddress(collectionHex)
	if err != nil {
		return nil, err
	}
	payee, rate := s.royalties.GetRoyalty(collection)
	return &model.RoyaltyResponse{
		Collection: collection.Hex(),
		Payee:      payee.Hex(),
		RateBps:    rate,
	}, nil
}

func (s *SettlementService) GetConfig() *model.ConfigResponse {
	cfg := s.engine.Config()
	return &model.ConfigResponse{
		Admin:           cfg.Admin().Hex(),
		EngineAddress:   cfg.EngineAddress().Hex(),
		ChainID:         cfg.ChainID(),
		MarketPayee:     cfg.MarketPayee().Hex(),
		MarketPercent:   cfg.MarketPercent(),
		RoyaltyRegistry: cfg.RoyaltyRegistry() != nil,
		PaymentToken:    cfg.PaymentToken().Hex(),
	}
}

func (s *SettlementService) SetMarketPayee(ctx context.Context, addressHex string) error {
	payee, err := model.ParseAddress(addressHex)
	if err != nil {
		return err
	}
	return s.engine.SetMarketPayee(ctx, s.admin(), payee)
}

func (s *SettlementService) SetMarketPercent(ctx context.Context, feeBps uint32) error {
	return s.engine.SetMarketPercent(ctx, s.admin(), feeBps)
}

// EnableRoyaltyRegistry wires the service's registry into the engine; the
// engine starts with no registry, matching a fresh deployment.
func (s *SettlementService) EnableRoyaltyRegistry(ctx context.Context) error {
	return s.engine.SetRoyaltyRegistry(ctx, s.admin(), s.royalties)
}

func (s *SettlementService) SetPaymentToken(ctx context.Context, addressHex string) error {
	token, err := model.ParseAddress(addressHex)
	if err != nil {
		return err
	}
	return s.engine.SetPaymentToken(ctx, s.admin(), token)
}

// Ledger provisioning and inspection. Only meaningful when the server runs on
// the in-memory ledgers.

func (s *SettlementService) MintAsset(req model.MintAssetRequest) error {
	collection, err := model.ParseAddress(req.Collection)
	if err != nil {
		return err
	}
	tokenID, err := model.ParseTokenID(req.TokenID)
	if err != nil {
		return err
	}
	to, err := model.ParseAddress(req.To)
	if err != nil {
		return err
	}
	return s.assets.Mint(collection, tokenID, to)
}

func (s *SettlementService) MintFunds(req model.MintFundsRequest) error {
	to, err := model.ParseAddress(req.To)
	if err != nil {
		return err
	}
	amount, err := model.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	s.payments.Mint(to, amount)
	return nil
}

// ApproveAsset grants the engine transfer rights over an owner's asset,
// either one token or the whole collection.
func (s *SettlementService) ApproveAsset(req model.ApproveAssetRequest) error {
	collection, err := model.ParseAddress(req.Collection)
	if err != nil {
		return err
	}
	owner, err := model.ParseAddress(req.Owner)
	if err != nil {
		return err
	}
	operator := s.engine.Config().EngineAddress()
	if req.All {
		s.assets.SetApprovalForAll(collection, owner, operator, true)
		return nil
	}
	tokenID, err := model.ParseTokenID(req.TokenID)
	if err != nil {
		return err
	}
	return s.assets.Approve(collection, tokenID, owner, operator)
}

// ApproveFunds grants the engine an allowance over a bidder's funds.
func (s *SettlementService) ApproveFunds(req model.ApproveFundsRequest) error {
	owner, err := model.ParseAddress(req.Owner)
	if err != nil {
		return err
	}
	amount, err := model.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	s.payments.Approve(owner, s.engine.Config().EngineAddress(), amount)
	return nil
}

func (s *SettlementService) OwnerOf(collectionHex, tokenIDStr string) (*model.OwnerResponse, error) {
	collection, err := model.ParseAddress(collectionHex)
	if err != nil {
		return nil, err
	}
	tokenID, err := model.ParseTokenID(tokenIDStr)
	if err != nil {
		return nil, err
	}
	owner, err := s.assets.OwnerOf(collection, tokenID)
	if err != nil {
		return nil, err
	}
	return &model.OwnerResponse{
		Collection: collection.Hex(),
		TokenID:    tokenID.String(),
		Owner:      owner.Hex(),
	}, nil
}

func (s *SettlementService) BalanceOf(addressHex string) (*model.BalanceResponse, error) {
	address, err := model.ParseAddress(addressHex)
	if err != nil {
		return nil, err
	}
	balance, err := s.payments.BalanceOf(address)
	if err != nil {
		return nil, err
	}
	return &model.BalanceResponse{
		Address:    address.Hex(),
		BalanceWei: balance.String(),
		Balance:    model.FormatAmount(balance),
	}, nil
}

func (s *SettlementService) admin() common.Address {
	return s.engine.Config().Admin()
}

func toListing(dto model.ListingDTO) (*signer.ListParams, error) {
	token, err := model.ParseAddress(dto.TokenAddress)
	if err != nil {
		return nil, err
	}
	tokenID, err := model.ParseTokenID(dto.TokenID)
	if err != nil {
		return nil, err
	}
	price, err := model.ParseAmount(dto.Price)
	if err != nil {
		return nil, err
	}
	seller, err := model.ParseAddress(dto.Seller)
	if err != nil {
		return nil, err
	}
	return &signer.ListParams{
		TokenAddress: token,
		TokenID:      tokenID,
		Price:        price,
		Seller:       seller,
	}, nil
}

func toOffer(dto model.OfferDTO) (*signer.OfferParams, error) {
	token, err := model.ParseAddress(dto.TokenAddress)
	if err != nil {
		return nil, err
	}
	tokenID, err := model.ParseTokenID(dto.TokenID)
	if err != nil {
		return nil, err
	}
	price, err := model.ParseAmount(dto.Price)
	if err != nil {
		return nil, err
	}
	bidder, err := model.ParseAddress(dto.Bidder)
	if err != nil {
		return nil, err
	}
	return &signer.OfferParams{
		TokenAddress: token,
		TokenID:      tokenID,
		Price:        price,
		Bidder:       bidder,
	}, nil
}
