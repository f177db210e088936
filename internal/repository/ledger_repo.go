package repository

import (
	"context"

	"go-marketplace-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository interface {
	Init(ctx context.Context, name string) (*model.LedgerState, error)
	Get(ctx context.Context) (*model.LedgerState, error)
	NextProductID(tx *gorm.DB) (uint64, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

// Init creates the ledger row on first boot. An existing row keeps its
// original name.
func (r *ledgerRepo) Init(ctx context.Context, name string) (*model.LedgerState, error) {
	state := model.LedgerState{ID: model.LedgerStateID}
	err := r.db.WithContext(ctx).
		Where(model.LedgerState{ID: model.LedgerStateID}).
		Attrs(model.LedgerState{Name: name}).
		FirstOrCreate(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *ledgerRepo) Get(ctx context.Context) (*model.LedgerState, error) {
	var state model.LedgerState
	err := r.db.WithContext(ctx).First(&state, model.LedgerStateID).Error
	return &state, err
}

// NextProductID menerima tx agar counter terkunci sampai commit
func (r *ledgerRepo) NextProductID(tx *gorm.DB) (uint64, error) {
	var state model.LedgerState
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&state, model.LedgerStateID).Error; err != nil {
		return 0, err
	}

	next := state.ProductCount + 1
	err := tx.Model(&model.LedgerState{}).
		Where("id = ?", model.LedgerStateID).
		Update("product_count", next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
