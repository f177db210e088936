package repository

import (
	"context"

	"go-marketplace-ledger/internal/model"

	"gorm.io/gorm"
)

type TransferRepository interface {
	Create(tx *gorm.DB, transfer *model.Transfer) error
	FindAll(ctx context.Context) ([]model.Transfer, error)
	FindByProduct(ctx context.Context, productID uint64) ([]model.Transfer, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(tx *gorm.DB, transfer *model.Transfer) error {
	return tx.Create(transfer).Error
}

func (r *transferRepo) FindAll(ctx context.Context) ([]model.Transfer, error) {
	var transfers []model.Transfer
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) FindByProduct(ctx context.Context, productID uint64) ([]model.Transfer, error) {
	var transfers []model.Transfer
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&transfers).Error
	return transfers, err
}
