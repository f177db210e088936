package model

import (
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventProductCreated   EventType = "ProductCreated"
	EventProductPurchased EventType = "ProductPurchased"
)

// Signature is the canonical EVM event signature; its Keccak-256 hash is
// the log topic.
func (t EventType) Signature() string {
	return string(t) + "(uint256,string,uint256,address,bool)"
}

func (t EventType) Topic() string {
	return crypto.Keccak256Hash([]byte(t.Signature())).Hex()
}

// ProductEvent carries the full record state after a successful mutation.
type ProductEvent struct {
	Type      EventType       `json:"type"`
	Topic     string          `json:"topic"`
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Owner     string          `json:"owner"`
	Purchased bool            `json:"purchased"`
	EmittedAt time.Time       `json:"emitted_at"`
}

func NewProductEvent(t EventType, p *Product) ProductEvent {
	return ProductEvent{
		Type:      t,
		Topic:     t.Topic(),
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Owner:     p.Owner,
		Purchased: p.Purchased,
		EmittedAt: time.Now().UTC(),
	}
}
