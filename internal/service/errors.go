package service

import "errors"

// Ledger rejections. Every one of them leaves state untouched.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("product not found")
	ErrPaymentMismatch   = errors.New("payment does not match price")
	ErrAlreadySold       = errors.New("product already sold")
	ErrSelfPurchase      = errors.New("owner cannot purchase own product")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account/auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid address or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// IsRejection reports whether err is a ledger precondition failure rather
// than an infrastructure error.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrNotFound, ErrPaymentMismatch,
		ErrAlreadySold, ErrSelfPurchase, ErrInsufficientFunds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
