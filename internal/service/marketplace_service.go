package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-marketplace-ledger/internal/events"
	"go-marketplace-ledger/internal/model"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/pkg/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MarketplaceService interface {
	Name(ctx context.Context) (string, error)
	ProductCount(ctx context.Context) (uint64, error)
	Product(ctx context.Context, id uint64) (model.Product, error)

	CreateProduct(ctx context.Context, name string, price decimal.Decimal, caller common.Address) (*model.Product, error)
	PurchaseProduct(ctx context.Context, id uint64, caller common.Address, payment decimal.Decimal) (*model.Product, error)

	ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error)
	ListTransfers(ctx context.Context, productID uint64) ([]model.Transfer, error)
	Account(ctx context.Context, address common.Address) (*model.Account, error)
}

// listing is validated before anything is written.
type listing struct {
	Name  string          `validate:"required"`
	Price decimal.Decimal `validate:"wei_positive"`
	Owner string          `validate:"nonzero_addr"`
}

type marketplaceService struct {
	ledgerRepo   repository.LedgerRepository
	productRepo  repository.ProductRepository
	accountRepo  repository.AccountRepository
	transferRepo repository.TransferRepository
	db           *gorm.DB
	observer     events.Observer
	logger       *zap.Logger

	// mu serialises mutations into a single total order. It also guards
	// pending and delivering; observers are never called with it held.
	mu         sync.Mutex
	pending    []model.ProductEvent
	delivering bool
}

func NewMarketplaceService(
	lRepo repository.LedgerRepository,
	pRepo repository.ProductRepository,
	aRepo repository.AccountRepository,
	tRepo repository.TransferRepository,
	db *gorm.DB,
	observer events.Observer,
	logger *zap.Logger,
) MarketplaceService {
	if observer == nil {
		observer = events.Nop
	}
	return &marketplaceService{
		ledgerRepo:   lRepo,
		productRepo:  pRepo,
		accountRepo:  aRepo,
		transferRepo: tRepo,
		db:           db,
		observer:     observer,
		logger:       logger.Named("marketplace"),
	}
}

func (s *marketplaceService) Name(ctx context.Context) (string, error) {
	state, err := s.ledgerRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load ledger state: %w", err)
	}
	return state.Name, nil
}

func (s *marketplaceService) ProductCount(ctx context.Context) (uint64, error) {
	state, err := s.ledgerRepo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ledger state: %w", err)
	}
	return state.ProductCount, nil
}

// Product returns the zero record, not an error, for unknown ids.
func (s *marketplaceService) Product(ctx context.Context, id uint64) (model.Product, error) {
	if id == 0 {
		return model.Product{}, nil
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, nil
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("load product %d: %w", id, err)
	}
	return *p, nil
}

func (s *marketplaceService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, caller common.Address) (*model.Product, error) {
	// 1. Validasi input
	in := listing{Name: name, Price: price, Owner: caller.Hex()}
	if errs := validator.ValidateStruct(&in); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, describeListingError(errs[0]))
	}

	s.mu.Lock()

	var product *model.Product

	// 2. Counter + insert in one transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := s.ledgerRepo.NextProductID(tx)
		if err != nil {
			return fmt.Errorf("allocate product id: %w", err)
		}

		product = &model.Product{
			ID:        id,
			Name:      name,
			Price:     price,
			Owner:     caller.Hex(),
			Seller:    caller.Hex(),
			Purchased: false,
		}
		if err := s.productRepo.Create(tx, product); err != nil {
			return fmt.Errorf("insert product %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("create product failed", zap.Error(err), zap.String("caller", caller.Hex()))
		return nil, err
	}

	// 3. Notify after commit
	s.publish(ctx, model.NewProductEvent(model.EventProductCreated, product))
	return product, nil
}

func describeListingError(e *validator.ErrorResponse) string {
	switch e.FailedField {
	case "listing.Name":
		return "product must have a name"
	case "listing.Price":
		return "product must have a positive whole-wei price"
	case "listing.Owner":
		return "caller must be a non-zero address"
	}
	return e.String()
}

func (s *marketplaceService) PurchaseProduct(ctx context.Context, id uint64, caller common.Address, payment decimal.Decimal) (*model.Product, error) {
	s.mu.Lock()

	var product *model.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Cari & lock product
		if id == 0 {
			return fmt.Errorf("%w: id 0", ErrNotFound)
		}
		p, err := s.productRepo.FindByIDForUpdate(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load product %d: %w", id, err)
		}

		// 2. Preconditions, in order
		if !payment.Equal(p.Price) {
			return fmt.Errorf("%w: sent %s wei, price is %s wei", ErrPaymentMismatch, payment, p.Price)
		}
		if p.Purchased {
			return fmt.Errorf("%w: id %d", ErrAlreadySold, id)
		}
		if p.IsOwnedBy(caller) {
			return fmt.Errorf("%w: %s", ErrSelfPurchase, caller.Hex())
		}

		// 3. Move funds
		seller := p.OwnerAddress().Hex()
		buyer := caller.Hex()

		buyerAcc, err := s.accountRepo.FindForUpdate(tx, buyer)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s has no account", ErrInsufficientFunds, buyer)
		}
		if err != nil {
			return fmt.Errorf("load account %s: %w", buyer, err)
		}
		if buyerAcc.Balance.LessThan(payment) {
			return fmt.Errorf("%w: balance %s wei, need %s wei", ErrInsufficientFunds, buyerAcc.Balance, payment)
		}
		sellerAcc, err := s.accountRepo.FindOrCreateForUpdate(tx, seller)
		if err != nil {
			return fmt.Errorf("load account %s: %w", seller, err)
		}

		if err := s.accountRepo.UpdateBalance(tx, buyer, buyerAcc.Balance.Sub(payment)); err != nil {
			return fmt.Errorf("debit %s: %w", buyer, err)
		}
		if err := s.accountRepo.UpdateBalance(tx, seller, sellerAcc.Balance.Add(payment)); err != nil {
			return fmt.Errorf("credit %s: %w", seller, err)
		}

		// 4. Transfer ownership
		if err := s.productRepo.MarkPurchased(tx, id, buyer); err != nil {
			return fmt.Errorf("mark product %d purchased: %w", id, err)
		}
		if err := s.transferRepo.Create(tx, &model.Transfer{
			ProductID: id,
			From:      buyer,
			To:        seller,
			Amount:    payment,
		}); err != nil {
			return fmt.Errorf("record transfer: %w", err)
		}

		p.Owner = buyer
		p.Purchased = true
		product = p
		return nil
	})
	if err != nil {
		s.mu.Unlock()
		if IsRejection(err) {
			s.logger.Debug("purchase rejected", zap.Uint64("id", id), zap.String("caller", caller.Hex()), zap.Error(err))
		} else {
			s.logger.Error("purchase failed", zap.Uint64("id", id), zap.String("caller", caller.Hex()), zap.Error(err))
		}
		return nil, err
	}

	s.publish(ctx, model.NewProductEvent(model.EventProductPurchased, product))
	return product, nil
}

// publish queues ev behind earlier commits and releases s.mu, which the
// caller must hold. The first caller to find no delivery in progress drains
// the queue in commit order; everyone else returns without waiting on
// observers.
func (s *marketplaceService) publish(ctx context.Context, ev model.ProductEvent) {
	s.pending = append(s.pending, ev)
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	ctx = context.WithoutCancel(ctx)
	for {
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, e := range batch {
			s.observer.Notify(ctx, e)
		}

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
	}
}

func (s *marketplaceService) ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error) {
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.FindAll(ctx, offset, limit)
}

// ListTransfers returns every transfer when productID is 0.
func (s *marketplaceService) ListTransfers(ctx context.Context, productID uint64) ([]model.Transfer, error) {
	if productID == 0 {
		return s.transferRepo.FindAll(ctx)
	}
	return s.transferRepo.FindByProduct(ctx, productID)
}

func (s *marketplaceService) Account(ctx context.Context, address common.Address) (*model.Account, error) {
	acc, err := s.accountRepo.FindByAddress(ctx, address.Hex())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	return acc, err
}
