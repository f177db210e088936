package handler

import (
	"errors"
	"strconv"

	"go-marketplace-ledger/internal/metrics"
	"go-marketplace-ledger/internal/middleware"
	"go-marketplace-ledger/internal/service"
	"go-marketplace-ledger/pkg/units"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const maxPageSize = 100

type MarketplaceHandler struct {
	service service.MarketplaceService
	metrics *metrics.Metrics
}

func NewMarketplaceHandler(s service.MarketplaceService, m *metrics.Metrics) *MarketplaceHandler {
	return &MarketplaceHandler{service: s, metrics: m}
}

// CreateProductRequest: price is in unit (default wei).
type CreateProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit"`
}

// PurchaseRequest: value is the attached payment in unit (default wei).
type PurchaseRequest struct {
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit"`
}

func parseProductID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// GetLedger returns the ledger name and product count
// GET /api/v1/ledger
func (h *MarketplaceHandler) GetLedger(c *fiber.Ctx) error {
	ctx := c.UserContext()
	name, err := h.service.Name(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	count, err := h.service.ProductCount(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"name": name, "product_count": count})
}

// GetProducts lists products ordered by id
// GET /api/v1/products?offset=0&limit=50
func (h *MarketplaceHandler) GetProducts(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", maxPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	products, err := h.service.ListProducts(c.UserContext(), offset, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// GetProduct returns a single record
// GET /api/v1/products/:id
func (h *MarketplaceHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.Product(c.UserContext(), id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if !product.Exists() {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found", "code": "NOT_FOUND"})
	}
	return c.JSON(product)
}

// CreateProduct lists a product owned by the caller
// POST /api/v1/products
func (h *MarketplaceHandler) CreateProduct(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	price, err := units.ToWei(req.Price, req.Unit)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error(), "code": "INVALID_INPUT"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.Name, price, caller)
	if err != nil {
		return writeLedgerError(c, h.metrics, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PurchaseProduct buys a product with the attached value
// POST /api/v1/products/:id/purchase
func (h *MarketplaceHandler) PurchaseProduct(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	value, err := units.ToWei(req.Value, req.Unit)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error(), "code": "INVALID_INPUT"})
	}

	product, err := h.service.PurchaseProduct(c.UserContext(), id, caller, value)
	if err != nil {
		return writeLedgerError(c, h.metrics, err)
	}

	return c.JSON(fiber.Map{"message": "Product purchased", "data": product})
}

// GetTransfers lists fund movements, optionally for one product
// GET /api/v1/transfers, GET /api/v1/products/:id/transfers
func (h *MarketplaceHandler) GetTransfers(c *fiber.Ctx) error {
	var productID uint64
	if c.Params("id") != "" {
		id, err := parseProductID(c)
		if err != nil || id == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
		}
		productID = id
	}

	transfers, err := h.service.ListTransfers(c.UserContext(), productID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(transfers)
}

// GetAccount returns the public view of an account
// GET /api/v1/accounts/:address
func (h *MarketplaceHandler) GetAccount(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid address"})
	}
	return h.writeAccount(c, common.HexToAddress(raw))
}

// GetMe returns the caller's own account
// GET /api/v1/accounts/me
func (h *MarketplaceHandler) GetMe(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return h.writeAccount(c, caller)
}

func (h *MarketplaceHandler) writeAccount(c *fiber.Ctx, addr common.Address) error {
	account, err := h.service.Account(c.UserContext(), addr)
	if errors.Is(err, service.ErrAccountNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(account.ToResponse())
}
