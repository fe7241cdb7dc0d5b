package event

import (
	"context"

	"github.com/opensettle/marketgate/internal/pkg/logger"
)

// Sink consumes emitted events. Sinks must not fail the settlement that
// produced the event; delivery problems are their own to log.
type Sink interface {
	Emit(ctx context.Context, e *Event)
}

// LogSink writes every event to the structured log. Always installed.
type LogSink struct{}

func (LogSink) Emit(ctx context.Context, e *Event) {
	args := []any{"event_id", e.ID, "kind", e.Kind}
	switch {
	case e.NFTBought != nil:
		p := e.NFTBought
		args = append(args, "buyer", p.Buyer, "seller", p.Seller,
			"collection", p.Collection, "token_id", p.TokenID, "price", p.Price)
	case e.OfferAccepted != nil:
		p := e.OfferAccepted
		args = append(args, "collection", p.Collection, "token_id", p.TokenID,
			"price", p.Price, "bidder", p.Bidder, "seller", p.Seller)
	case e.CollectionRegistered != nil:
		p := e.CollectionRegistered
		args = append(args, "collection", p.Collection, "payee", p.Payee, "rate_bps", p.RateBps)
	case e.ConfigChanged != nil:
		args = append(args, "field", e.ConfigChanged.Field, "value", e.ConfigChanged.Value)
	}
	logger.Get().InfoContext(ctx, "settlement event", args...)
}

// Fanout delivers each event to every registered sink in order.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, e *Event) {
	for _, s := range f {
		s.Emit(ctx, e)
	}
}
