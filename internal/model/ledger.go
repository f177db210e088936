package model

import "time"

// LedgerStateID is the primary key of the single ledger_states row.
const LedgerStateID = 1

// LedgerState holds the ledger-wide counter. Name is written once at
// first boot and never updated.
type LedgerState struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	ProductCount uint64    `gorm:"not null;default:0" json:"product_count"`
	CreatedAt    time.Time `json:"deployed_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
