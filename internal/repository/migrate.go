package repository

import (
	"go-marketplace-ledger/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the ledger tables.
// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.LedgerState{}, &model.Account{}, &model.Product{}, &model.Transfer{})
}
