package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNFTBought            Type = "nft_bought"
	TypeOfferAccepted        Type = "offer_accepted"
	TypeCollectionRegistered Type = "collection_registered"
	TypeConfigChanged        Type = "config_changed"
)

// Event is what the engine emits for off-chain consumers. Exactly one payload
// field is set, matching Kind. Amounts are decimal wei strings, addresses are
// 0x-prefixed hex.
type Event struct {
	ID   string    `json:"id"`
	Kind Type      `json:"kind"`
	At   time.Time `json:"at"`

	NFTBought            *NFTBought            `json:"nft_bought,omitempty"`
	OfferAccepted        *OfferAccepted        `json:"offer_accepted,omitempty"`
	CollectionRegistered *CollectionRegistered `json:"collection_registered,omitempty"`
	ConfigChanged        *ConfigChanged        `json:"config_changed,omitempty"`
}

// NFTBought is emitted once per settled listing, in bundle input order.
type NFTBought struct {
	Buyer      string `json:"buyer"`
	Seller     string `json:"seller"`
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	Price      string `json:"price"`
}

// OfferAccepted is emitted when an asset owner settles a bidder's signed offer.
type OfferAccepted struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	Price      string `json:"price"`
	Bidder     string `json:"bidder"`
	Seller     string `json:"seller"`
}

type CollectionRegistered struct {
	Collection string `json:"collection"`
	Payee      string `json:"payee"`
	RateBps    uint32 `json:"rate_bps"`
}

type ConfigChanged struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func New(kind Type) *Event {
	return &Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   time.Now().UTC(),
	}
}

func NewNFTBought(p *NFTBought) *Event {
	e := New(TypeNFTBought)
	e.NFTBought = p
	return e
}

func NewOfferAccepted(p *OfferAccepted) *Event {
	e := New(TypeOfferAccepted)
	e.OfferAccepted = p
	return e
}

func NewCollectionRegistered(p *CollectionRegistered) *Event {
	e := New(TypeCollectionRegistered)
	e.CollectionRegistered = p
	return e
}

func NewConfigChanged(field, value string) *Event {
	e := New(TypeConfigChanged)
	e.ConfigChanged = &ConfigChanged{Field: field, Value: value}
	return e
}
