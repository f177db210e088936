package handler

import (
	"go-marketplace-ledger/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups everything RegisterRoutes needs. Hub and Gatherer are optional.
type Routes struct {
	Marketplace *MarketplaceHandler
	Auth        *AuthHandler
	RequireAuth fiber.Handler
	Hub         *ws.Hub
	Gatherer    prometheus.Gatherer
}

func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if r.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", r.Auth.Register)
	auth.Post("/login", r.Auth.Login)
	auth.Post("/change-password", r.Auth.ChangePassword)
	auth.Post("/validate-token", r.Auth.ValidateToken)

	api.Get("/ledger", r.Marketplace.GetLedger)
	api.Get("/products", r.Marketplace.GetProducts)
	api.Get("/products/:id", r.Marketplace.GetProduct)
	api.Get("/products/:id/transfers", r.Marketplace.GetTransfers)
	api.Get("/transfers", r.Marketplace.GetTransfers)

	// ============ PROTECTED ROUTES ============
	api.Get("/accounts/me", r.RequireAuth, r.Marketplace.GetMe)
	api.Get("/accounts/:address", r.Marketplace.GetAccount)
	api.Post("/products", r.RequireAuth, r.Marketplace.CreateProduct)
	api.Post("/products/:id/purchase", r.RequireAuth, r.Marketplace.PurchaseProduct)

	// WebSocket Route
	if r.Hub != nil {
		hub := r.Hub
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			hub.Add(c)
			defer hub.Remove(c)

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}
}
