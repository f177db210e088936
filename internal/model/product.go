package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Product is a listing. ID is assigned from LedgerState.ProductCount, so
// ids are dense and start at 1.
type Product struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string          `gorm:"type:text;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:varchar(80);not null" json:"price"` // wei
	Owner     string          `gorm:"type:varchar(42);not null;index" json:"owner"`
	Seller    string          `gorm:"type:varchar(42);not null;index" json:"seller"`
	Purchased bool            `gorm:"not null;default:false" json:"purchased"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relasi
	Transfers []Transfer `json:"transfers,omitempty"`
}

// Exists reports whether p is a stored record rather than the zero value
// returned for an unknown id.
func (p *Product) Exists() bool {
	return p.ID != 0
}

func (p *Product) OwnerAddress() common.Address {
	return common.HexToAddress(p.Owner)
}

func (p *Product) IsOwnedBy(addr common.Address) bool {
	return p.OwnerAddress() == addr
}
