package repository

import (
	"context"
	"errors"
	"time"

	"go-marketplace-ledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByAddress(ctx context.Context, address string) (*model.Account, error)
	FindAll(ctx context.Context) ([]model.Account, error)
	UpdatePassword(ctx context.Context, address, hashedPassword string) error
	UpdateSession(ctx context.Context, address, tokenVersion string, loginAt time.Time) error
	SetActive(ctx context.Context, address string, active bool) error

	// Used inside ledger transactions.
	FindForUpdate(tx *gorm.DB, address string) (*model.Account, error)
	FindOrCreateForUpdate(tx *gorm.DB, address string) (*model.Account, error)
	UpdateBalance(tx *gorm.DB, address string, balance decimal.Decimal) error
}

type accountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) FindByAddress(ctx context.Context, address string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) FindAll(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepo) UpdatePassword(ctx context.Context, address, hashedPassword string) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).Where("address = ?", address).Update("password", hashedPassword).Error
}

func (r *accountRepo) UpdateSession(ctx context.Context, address, tokenVersion string, loginAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).
		Updates(map[string]interface{}{
			"token_version": tokenVersion,
			"last_login_at": loginAt,
		}).Error
}

func (r *accountRepo) SetActive(ctx context.Context, address string, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("address = ?", address).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepo) FindForUpdate(tx *gorm.DB, address string) (*model.Account, error) {
	var account model.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("address = ?", address).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindOrCreateForUpdate returns the locked account, creating an empty one
// (zero balance, no password) when the address has never been seen.
func (r *accountRepo) FindOrCreateForUpdate(tx *gorm.DB, address string) (*model.Account, error) {
	account, err := r.FindForUpdate(tx, address)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account = &model.Account{Address: address, Balance: decimal.Zero, IsActive: true}
	if err := tx.Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepo) UpdateBalance(tx *gorm.DB, address string, balance decimal.Decimal) error {
	return tx.Model(&model.Account{}).Where("address = ?", address).Update("balance", balance).Error
}
