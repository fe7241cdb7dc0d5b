package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/opensettle/marketgate/internal/event"
	"github.com/opensettle/marketgate/internal/pkg/logger"
)

// SettlementRecord is one emitted event, flattened for indexer queries. The
// full payload is kept as JSON alongside the indexed columns.
type SettlementRecord struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Kind       string    `gorm:"size:32;index" json:"kind"`
	Collection string    `gorm:"size:42;index" json:"collection"`
	TokenID    string    `gorm:"size:78" json:"token_id"`
	Price      string    `gorm:"size:78" json:"price"`
	Buyer      string    `gorm:"size:42;index" json:"buyer"`
	Seller     string    `gorm:"size:42;index" json:"seller"`
	Payload    []byte    `gorm:"type:jsonb" json:"payload"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (SettlementRecord) TableName() string {
	return "settlement_events"
}

// SettlementStore persists every emitted event to Postgres so off-chain
// consumers can reconstruct trade history. It implements event.Sink.
type SettlementStore struct {
	db *gorm.DB
}

func NewSettlementStore(db *gorm.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

func (s *SettlementStore) Emit(ctx context.Context, e *event.Event) {
	rec := toRecord(e)
	if rec == nil {
		return
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		logger.LogError(ctx, err, "failed to persist settlement event", "event_id", e.ID)
	}
}

func toRecord(e *event.Event) *SettlementRecord {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	rec := &SettlementRecord{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Payload:   payload,
		CreatedAt: e.At,
	}
	switch {
	case e.NFTBought != nil:
		p := e.NFTBought
		rec.Collection, rec.TokenID, rec.Price = p.Collection, p.TokenID, p.Price
		rec.Buyer, rec.Seller = p.Buyer, p.Seller
	case e.OfferAccepted != nil:
		p := e.OfferAccepted
		rec.Collection, rec.TokenID, rec.Price = p.Collection, p.TokenID, p.Price
		rec.Buyer, rec.Seller = p.Bidder, p.Seller
	case e.CollectionRegistered != nil:
		rec.Collection = e.CollectionRegistered.Collection
	}
	return rec
}

// History returns the most recent settlement records, optionally filtered by
// collection.
func (s *SettlementStore) History(ctx context.Context, collection string, limit int) ([]*SettlementRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if collection != "" {
		q = q.Where("collection = ?", collection)
	}
	var records []*SettlementRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
