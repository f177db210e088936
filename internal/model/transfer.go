package model

import "github.com/shopspring/decimal"

// Transfer records funds moved from buyer to owner by a purchase.
type Transfer struct {
	BaseModel
	ProductID uint64          `gorm:"not null;index" json:"product_id"`
	From      string          `gorm:"column:from_address;type:varchar(42);not null;index" json:"from"`
	To        string          `gorm:"column:to_address;type:varchar(42);not null;index" json:"to"`
	Amount    decimal.Decimal `gorm:"type:varchar(80);not null" json:"amount"` // wei
}
