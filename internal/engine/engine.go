package engine

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opensettle/marketgate/internal/event"
	"github.com/opensettle/marketgate/internal/pkg/apperrors"
	"github.com/opensettle/marketgate/internal/pkg/metrics"
	"github.com/opensettle/marketgate/internal/signer"
)

// MaxBundleSize caps items per bundle, checked before any per-item work.
const MaxBundleSize = 20

// Engine settles signed trade terms: it verifies the presented signature
// against the engine's own typed-data domain, checks custody and payment
// preconditions, splits the proceeds and performs all transfers as one
// atomic unit. Calls are strictly serialized; a failed call leaves no state
// change behind.
type Engine struct {
	mu       sync.Mutex
	cfg      *Config
	assets   AssetLedger
	payments PaymentLedger
	sink     event.Sink
}

func New(cfg *Config, assets AssetLedger, payments PaymentLedger, sink event.Sink) *Engine {
	if sink == nil {
		sink = event.LogSink{}
	}
	return &Engine{
		cfg:      cfg,
		assets:   assets,
		payments: payments,
		sink:     sink,
	}
}

func (e *Engine) Config() *Config {
	return e.cfg
}

// plannedItem is one fully validated listing with its payout already computed.
// Nothing has moved yet when a plan is built.
type plannedItem struct {
	listing      *signer.ListParams
	split        PayoutSplit
	royaltyPayee common.Address
}

// BuyNFT settles a single signed listing. The payment must equal the signed
// price exactly; there is no refund path for overpayment.
func (e *Engine) BuyNFT(ctx context.Context, buyer common.Address, listing *signer.ListParams, sig []byte, payment *big.Int) (*event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.settleListings(ctx, buyer, []*signer.ListParams{listing}, [][]byte{sig}, payment)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("buy", "rejected").Inc()
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues("buy", "ok").Inc()
	return events[0], nil
}

// BuyBundle settles an ordered batch of listings as one atomic unit: if any
// item fails any check, nothing moves for any item.
func (e *Engine) BuyBundle(ctx context.Context, buyer common.Address, listings []*signer.ListParams, sigs [][]byte, payment *big.Int) ([]*event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkBundleShape(listings, sigs); err != nil {
		metrics.SettlementsTotal.WithLabelValues("bundle", "rejected").Inc()
		return nil, err
	}

	events, err := e.settleListings(ctx, buyer, listings, sigs, payment)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("bundle", "rejected").Inc()
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues("bundle", "ok").Inc()
	metrics.BundleItems.Observe(float64(len(listings)))
	return events, nil
}

func checkBundleShape(listings []*signer.ListParams, sigs [][]byte) error {
	if len(listings) == 0 {
		return apperrors.New(apperrors.ErrEmptyBundle, "Empty listings", nil)
	}
	if len(listings) != len(sigs) {
		return apperrors.New(apperrors.ErrLengthMismatch, "Invalid length", nil)
	}
	if len(listings) > MaxBundleSize {
		return apperrors.New(apperrors.ErrBundleTooLarge, "20 listings max", nil)
	}
	return nil
}

// settleListings validates every item completely, then executes the whole
// plan. Items are processed strictly in input order with the payment as a
// running budget: an underfunded item and leftover funds after the last item
// are both price mismatches.
func (e *Engine) settleListings(ctx context.Context, buyer common.Address, listings []*signer.ListParams, sigs [][]byte, payment *big.Int) ([]*event.Event, error) {
	plan, err := e.planListings(buyer, listings, sigs, payment)
	if err != nil {
		return nil, err
	}
	if err := e.executeListings(buyer, plan); err != nil {
		return nil, err
	}

	events := make([]*event.Event, 0, len(plan))
	for _, it := range plan {
		ev := event.NewNFTBought(&event.NFTBought{
			Buyer:      buyer.Hex(),
			Seller:     it.listing.Seller.Hex(),
			Collection: it.listing.TokenAddress.Hex(),
			TokenID:    it.listing.TokenID.String(),
			Price:      it.listing.Price.String(),
		})
		e.sink.Emit(ctx, ev)
		events = append(events, ev)
	}
	return events, nil
}

func (e *Engine) planListings(buyer common.Address, listings []*signer.ListParams, sigs [][]byte, payment *big.Int) ([]plannedItem, error) {
	chainID := e.cfg.ChainID()
	engineAddr := e.cfg.EngineAddress()
	feeBps := e.cfg.MarketPercent()
	royalties := e.cfg.RoyaltyRegistry()

	balance, err := e.payments.BalanceOf(buyer)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if balance.Cmp(payment) < 0 {
		return nil, apperrors.New(apperrors.ErrInsufficientBalance, "insufficient balance", nil)
	}

	remaining := new(big.Int).Set(payment)
	plan := make([]plannedItem, 0, len(listings))
	for i, l := range listings {
		recovered, err := signer.RecoverListingSigner(l, sigs[i], chainID, engineAddr)
		if err != nil {
			return nil, err
		}
		if recovered != l.Seller {
			return nil, apperrors.New(apperrors.ErrInvalidSignature, "Invalid signature", nil)
		}

		owner, err := e.assets.OwnerOf(l.TokenAddress, l.TokenID)
		if err != nil || owner != l.Seller {
			return nil, apperrors.New(apperrors.ErrSellerNotOwner, "Seller not own nft", err)
		}

		if remaining.Cmp(l.Price) < 0 {
			return nil, apperrors.New(apperrors.ErrPriceMismatch, "Price not match", nil)
		}
		remaining.Sub(remaining, l.Price)

		var royaltyPayee common.Address
		var royaltyBps uint32
		if royalties != nil {
			royaltyPayee, royaltyBps = royalties.GetRoyalty(l.TokenAddress)
		}
		if royaltyPayee == (common.Address{}) {
			royaltyBps = 0
		}

		approved, err := e.assets.IsApproved(l.TokenAddress, l.TokenID, l.Seller, engineAddr)
		if err != nil || !approved {
			return nil, apperrors.New(apperrors.ErrNotApproved, "nft not approved for market", err)
		}

		split := Apportion(l.Price, feeBps, royaltyBps)
		if split.Seller.Sign() < 0 {
			// Each rate is bounded below 10000 on its own, but fee plus
			// royalty together can still exceed the price.
			return nil, apperrors.New(apperrors.ErrInvalidRate, "Fee and royalty exceed price", nil)
		}

		plan = append(plan, plannedItem{
			listing:      l,
			split:        split,
			royaltyPayee: royaltyPayee,
		})
	}
	if remaining.Sign() != 0 {
		return nil, apperrors.New(apperrors.ErrPriceMismatch, "Price not match", nil)
	}
	return plan, nil
}

// executeListings applies a validated plan. With conforming collaborators and
// the engine lock held nothing here can fail; if a collaborator misbehaves
// anyway, already-applied transfers are compensated in reverse order so the
// call still has no net effect.
func (e *Engine) executeListings(buyer common.Address, plan []plannedItem) error {
	payee := e.cfg.MarketPayee()
	var undo []func()

	fail := func(err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return apperrors.New(apperrors.ErrInternal, "settlement execution failed", err)
	}

	for _, it := range plan {
		l := it.listing
		if err := e.assets.Transfer(l.TokenAddress, l.TokenID, l.Seller, buyer); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { _ = e.assets.Transfer(l.TokenAddress, l.TokenID, buyer, l.Seller) })

		if err := e.pay(buyer, l.Seller, it.split.Seller, &undo); err != nil {
			return fail(err)
		}
		if err := e.pay(buyer, payee, it.split.Market, &undo); err != nil {
			return fail(err)
		}
		if err := e.pay(buyer, it.royaltyPayee, it.split.Royalty, &undo); err != nil {
			return fail(err)
		}
	}
	return nil
}

// pay moves amount and records the compensating transfer. Zero amounts are
// skipped entirely so an unset royalty never produces a transfer.
func (e *Engine) pay(from, to common.Address, amount *big.Int, undo *[]func()) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := e.payments.Transfer(from, to, amount); err != nil {
		return err
	}
	*undo = append(*undo, func() { _ = e.payments.Transfer(to, from, amount) })
	return nil
}

// AcceptOffer settles a bidder's signed offer, presented by the current asset
// owner. Funds move from the bidder under the allowance granted to the
// engine; the asset moves from the caller to the bidder.
func (e *Engine) AcceptOffer(ctx context.Context, seller common.Address, offer *signer.OfferParams, sig []byte) (*event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev, err := e.acceptOffer(ctx, seller, offer, sig)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("offer", "rejected").Inc()
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues("offer", "ok").Inc()
	return ev, nil
}

func (e *Engine) acceptOffer(ctx context.Context, seller common.Address, offer *signer.OfferParams, sig []byte) (*event.Event, error) {
	engineAddr := e.cfg.EngineAddress()

	owner, err := e.assets.OwnerOf(offer.TokenAddress, offer.TokenID)
	if err != nil || owner != seller {
		return nil, apperrors.New(apperrors.ErrNotOwner, "not own nft", err)
	}

	recovered, err := signer.RecoverOfferSigner(offer, sig, e.cfg.ChainID(), engineAddr)
	if err != nil {
		return nil, err
	}
	if recovered != offer.Bidder {
		return nil, apperrors.New(apperrors.ErrInvalidSignature, "invalid signature", nil)
	}

	approved, err := e.assets.IsApproved(offer.TokenAddress, offer.TokenID, seller, engineAddr)
	if err != nil || !approved {
		return nil, apperrors.New(apperrors.ErrNotApproved, "nft not approved for market", err)
	}

	allowance, err := e.payments.Allowance(offer.Bidder, engineAddr)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if allowance.Cmp(offer.Price) < 0 {
		return nil, apperrors.New(apperrors.ErrInsufficientAllowance, "insufficient allowance", nil)
	}
	balance, err := e.payments.BalanceOf(offer.Bidder)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if balance.Cmp(offer.Price) < 0 {
		return nil, apperrors.New(apperrors.ErrInsufficientBalance, "insufficient balance", nil)
	}

	var royaltyPayee common.Address
	var royaltyBps uint32
	if royalties := e.cfg.RoyaltyRegistry(); royalties != nil {
		royaltyPayee, royaltyBps = royalties.GetRoyalty(offer.TokenAddress)
	}
	if royaltyPayee == (common.Address{}) {
		royaltyBps = 0
	}
	split := Apportion(offer.Price, e.cfg.MarketPercent(), royaltyBps)
	if split.Seller.Sign() < 0 {
		return nil, apperrors.New(apperrors.ErrInvalidRate, "Fee and royalty exceed price", nil)
	}

	if err := e.executeOffer(seller, offer, split, royaltyPayee); err != nil {
		return nil, err
	}

	ev := event.NewOfferAccepted(&event.OfferAccepted{
		Collection: offer.TokenAddress.Hex(),
		TokenID:    offer.TokenID.String(),
		Price:      offer.Price.String(),
		Bidder:     offer.Bidder.Hex(),
		Seller:     seller.Hex(),
	})
	e.sink.Emit(ctx, ev)
	return ev, nil
}

func (e *Engine) executeOffer(seller common.Address, offer *signer.OfferParams, split PayoutSplit, royaltyPayee common.Address) error {
	engineAddr := e.cfg.EngineAddress()
	payee := e.cfg.MarketPayee()
	var undo []func()

	fail := func(err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return apperrors.New(apperrors.ErrInternal, "settlement execution failed", err)
	}

	if err := e.pull(engineAddr, offer.Bidder, seller, split.Seller, &undo); err != nil {
		return fail(err)
	}
	if err := e.pull(engineAddr, offer.Bidder, payee, split.Market, &undo); err != nil {
		return fail(err)
	}
	if err := e.pull(engineAddr, offer.Bidder, royaltyPayee, split.Royalty, &undo); err != nil {
		return fail(err)
	}
	if err := e.assets.Transfer(offer.TokenAddress, offer.TokenID, seller, offer.Bidder); err != nil {
		return fail(err)
	}
	return nil
}

func (e *Engine) pull(operator, from, to common.Address, amount *big.Int, undo *[]func()) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := e.payments.TransferFrom(operator, from, to, amount); err != nil {
		return err
	}
	*undo = append(*undo, func() { _ = e.payments.Transfer(to, from, amount) })
	return nil
}

// Configuration mutators. Each is administrator-only and takes effect for the
// next settlement immediately.

func (e *Engine) SetMarketPayee(ctx context.Context, caller, payee common.Address) error {
	if err := e.cfg.SetMarketPayee(caller, payee); err != nil {
		return err
	}
	e.sink.Emit(ctx, event.NewConfigChanged("market_payee", payee.Hex()))
	return nil
}

func (e *Engine) SetMarketPercent(ctx context.Context, caller common.Address, feeBps uint32) error {
	if err := e.cfg.SetMarketPercent(caller, feeBps); err != nil {
		return err
	}
	e.sink.Emit(ctx, event.NewConfigChanged("market_percent", new(big.Int).SetUint64(uint64(feeBps)).String()))
	return nil
}

func (e *Engine) SetRoyaltyRegistry(ctx context.Context, caller common.Address, registry RoyaltySource) error {
	if err := e.cfg.SetRoyaltyRegistry(caller, registry); err != nil {
		return err
	}
	value := "cleared"
	if registry != nil {
		value = "set"
	}
	e.sink.Emit(ctx, event.NewConfigChanged("royalty_registry", value))
	return nil
}

func (e *Engine) SetPaymentToken(ctx context.Context, caller, token common.Address) error {
	if err := e.cfg.SetPaymentToken(caller, token); err != nil {
		return err
	}
	e.sink.Emit(ctx, event.NewConfigChanged("payment_token", token.Hex()))
	return nil
}
