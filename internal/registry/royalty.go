package registry

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opensettle/marketgate/internal/event"
	"github.com/opensettle/marketgate/internal/pkg/apperrors"
	"github.com/opensettle/marketgate/internal/pkg/metrics"
)

const maxRateBps = 10000

type entry struct {
	payee   common.Address
	rateBps uint32
}

// Royalty maps asset collections to a payee and a rate in basis points.
// Writable only by the configured administrator, readable by anyone. A
// collection with no entry has zero royalty; that is a normal outcome, not a
// lookup failure.
type Royalty struct {
	mu      sync.RWMutex
	admin   common.Address
	entries map[common.Address]entry
	sink    event.Sink
}

func New(admin common.Address, sink event.Sink) *Royalty {
	if sink == nil {
		sink = event.LogSink{}
	}
	return &Royalty{
		admin:   admin,
		entries: make(map[common.Address]entry),
		sink:    sink,
	}
}

// SetRoyalty registers or overwrites the royalty terms for a collection.
func (r *Royalty) SetRoyalty(ctx context.Context, caller, collection, payee common.Address, rateBps uint32) error {
	if caller != r.admin {
		return apperrors.New(apperrors.ErrUnauthorized, "caller is not the owner", nil)
	}
	if rateBps >= maxRateBps {
		return apperrors.New(apperrors.ErrInvalidRate, "Royalty must be less than 10000", nil)
	}

	r.mu.Lock()
	r.entries[collection] = entry{payee: payee, rateBps: rateBps}
	r.mu.Unlock()

	metrics.RoyaltyRegistrations.Inc()
	r.sink.Emit(ctx, event.NewCollectionRegistered(&event.CollectionRegistered{
		Collection: collection.Hex(),
		Payee:      payee.Hex(),
		RateBps:    rateBps,
	}))
	return nil
}

// GetRoyalty returns the payee and rate for a collection, or the zero address
// and 0 when the collection was never registered.
func (r *Royalty) GetRoyalty(collection common.Address) (common.Address, uint32) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.entries[collection]
	return e.payee, e.rateBps
}
