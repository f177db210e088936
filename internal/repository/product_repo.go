package repository

import (
	"context"

	"go-marketplace-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context, offset, limit int) ([]model.Product, error)
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	FindByIDForUpdate(tx *gorm.DB, id uint64) (*model.Product, error)
	MarkPurchased(tx *gorm.DB, id uint64, buyer string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, offset, limit int) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	return &product, err
}

// FindByIDForUpdate locks the row for the rest of tx (no-op on sqlite).
func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, id uint64) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	return &product, err
}

// MarkPurchased only matches rows still listed, so a record is sold once.
func (r *productRepo) MarkPurchased(tx *gorm.DB, id uint64, buyer string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND purchased = ?", id, false).
		Updates(map[string]interface{}{
			"owner":     buyer,
			"purchased": true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
