package handler

import (
	"errors"

	"go-marketplace-ledger/internal/metrics"
	"go-marketplace-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var ledgerErrors = []errorMapping{
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrPaymentMismatch, fiber.StatusUnprocessableEntity, "PAYMENT_MISMATCH"},
	{service.ErrAlreadySold, fiber.StatusConflict, "ALREADY_SOLD"},
	{service.ErrSelfPurchase, fiber.StatusForbidden, "SELF_PURCHASE"},
	{service.ErrInsufficientFunds, fiber.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
}

// writeLedgerError maps ledger rejections to status codes; anything else is a 500.
func writeLedgerError(c *fiber.Ctx, m *metrics.Metrics, err error) error {
	for _, e := range ledgerErrors {
		if errors.Is(err, e.err) {
			if m != nil {
				m.Rejected(e.code)
			}
			return c.Status(e.status).JSON(fiber.Map{"error": err.Error(), "code": e.code})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error", "code": "INTERNAL"})
}
