package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Account is an identity that can list, buy and hold a wei balance.
type Account struct {
	BaseModel
	Address      string          `gorm:"type:varchar(42);uniqueIndex;not null" json:"address"`
	Password     string          `gorm:"type:varchar(255)" json:"-"` // Hidden from JSON
	Balance      decimal.Decimal `gorm:"type:varchar(80);not null" json:"balance"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	TokenVersion string          `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastLoginAt  *time.Time      `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the account's password
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (a *Account) CheckPassword(password string) bool {
	if a.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
	return err == nil
}

func (a *Account) AddressValue() common.Address {
	return common.HexToAddress(a.Address)
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID          uuid.UUID       `json:"id"`
	Address     string          `json:"address"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

// ToResponse converts Account to AccountResponse
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Address:     a.Address,
		Balance:     a.Balance,
		IsActive:    a.IsActive,
		LastLoginAt: a.LastLoginAt,
	}
}
