package middleware

import (
	"strings"

	"go-marketplace-ledger/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

// CallerKey is the fiber.Locals key holding the authenticated common.Address.
const CallerKey = "caller"

// RequireAuth is middleware that validates JWT token and sets the caller address in context
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		// Validate token, account and session version
		account, err := authService.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(CallerKey, account.AddressValue())

		return c.Next()
	}
}

// Caller returns the address set by RequireAuth.
func Caller(c *fiber.Ctx) (common.Address, bool) {
	addr, ok := c.Locals(CallerKey).(common.Address)
	return addr, ok
}
