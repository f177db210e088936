package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-marketplace-ledger/internal/model"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/pkg/jwt"
	"go-marketplace-ledger/pkg/validator"
)

const minPasswordLength = 6

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*model.Account, error)
	Login(ctx context.Context, address, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*model.Account, error)
	ChangePassword(ctx context.Context, address, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, address, newPassword string) error
}

type RegisterRequest struct {
	// Address is optional; a fresh one is generated when empty.
	Address  string `json:"address" validate:"omitempty,eth_addr,nonzero_addr"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token   string                `json:"token"`
	Account model.AccountResponse `json:"account"`
}

type authService struct {
	accountRepo repository.AccountRepository
	faucet      decimal.Decimal
}

// NewAuthService credits faucet wei to every newly registered account.
func NewAuthService(accountRepo repository.AccountRepository, faucet decimal.Decimal) AuthService {
	return &authService{
		accountRepo: accountRepo,
		faucet:      faucet,
	}
}

func newAddress() (common.Address, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.Account, error) {
	// 1. Validate request
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		if firstErr.FailedField == "RegisterRequest.Password" {
			return nil, ErrWeakPassword
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, firstErr)
	}

	// 2. Resolve address
	var addr common.Address
	if req.Address == "" {
		generated, err := newAddress()
		if err != nil {
			return nil, fmt.Errorf("generate address: %w", err)
		}
		addr = generated
	} else {
		addr = common.HexToAddress(req.Address)
	}

	// 3. Check if address already exists
	existing, err := s.accountRepo.FindByAddress(ctx, addr.Hex())
	if err == nil && existing != nil {
		return nil, ErrAccountExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account := &model.Account{
		Address:  addr.Hex(),
		Balance:  s.faucet,
		IsActive: true,
	}
	if err := account.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 4. A concurrent register of the same address loses on the unique index
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return account, nil
}

func (s *authService) Login(ctx context.Context, address, password string) (*LoginResponse, error) {
	// 1. Find account by address
	if !common.IsHexAddress(address) {
		return nil, ErrInvalidCredentials
	}
	account, err := s.accountRepo.FindByAddress(ctx, common.HexToAddress(address).Hex())
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Check if account is active
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	// 3. Verify password
	if !account.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Single Session: Generate New Token Version
	newTokenVersion := uuid.New().String()
	now := time.Now()
	if err := s.accountRepo.UpdateSession(ctx, account.Address, newTokenVersion, now); err != nil {
		return nil, errors.New("failed to update session")
	}
	account.TokenVersion = newTokenVersion
	account.LastLoginAt = &now

	// 5. Generate JWT token with TokenVersion
	token, err := jwt.GenerateToken(account.Address, newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:   token,
		Account: account.ToResponse(),
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*model.Account, error) {
	// 1. Validate JWT token
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Find account from token claims
	account, err := s.accountRepo.FindByAddress(ctx, claims.Address)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	// 3. Check if account is still active
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	// 4. Check against DB for strict session (TokenVersion)
	if account.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}

	return account, nil
}

func (s *authService) ChangePassword(ctx context.Context, address, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	// 1. Find account
	if !common.IsHexAddress(address) {
		return ErrAccountNotFound
	}
	account, err := s.accountRepo.FindByAddress(ctx, common.HexToAddress(address).Hex())
	if err != nil {
		return ErrAccountNotFound
	}

	// 2. Verify old password
	if !account.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}

	return s.setPassword(ctx, account, newPassword)
}

// ResetPassword skips the old-password check; operator use only.
func (s *authService) ResetPassword(ctx context.Context, address, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	if !common.IsHexAddress(address) {
		return ErrAccountNotFound
	}
	account, err := s.accountRepo.FindByAddress(ctx, common.HexToAddress(address).Hex())
	if err != nil {
		return ErrAccountNotFound
	}
	return s.setPassword(ctx, account, newPassword)
}

func (s *authService) setPassword(ctx context.Context, account *model.Account, password string) error {
	if err := account.SetPassword(password); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.accountRepo.UpdatePassword(ctx, account.Address, account.Password)
}
