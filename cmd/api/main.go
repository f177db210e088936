package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-marketplace-ledger/internal/config"
	"go-marketplace-ledger/internal/events"
	"go-marketplace-ledger/internal/handler"
	"go-marketplace-ledger/internal/metrics"
	"go-marketplace-ledger/internal/middleware"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/internal/service"
	"go-marketplace-ledger/internal/ws"
	"go-marketplace-ledger/pkg/database"
	applog "go-marketplace-ledger/pkg/logger"
	"go-marketplace-ledger/pkg/units"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	cfg, envFound := config.Load()

	log, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if !envFound {
		log.Warn(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ledgerRepo := repository.NewLedgerRepo(db)
	state, err := ledgerRepo.Init(context.Background(), cfg.LedgerName)
	if err != nil {
		log.Fatal("failed to initialise ledger", zap.Error(err))
	}
	log.Info("ledger ready",
		zap.String("name", state.Name),
		zap.Uint64("product_count", state.ProductCount),
		zap.Time("deployed_at", state.CreatedAt),
	)

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 4. Setup WebSocket Hub and event observers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	observers := events.Multi{
		events.NewLogObserver(log),
		events.NewMetricsObserver(m),
		wsHub,
	}
	var publisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			WriteTimeout: 5 * time.Second,
		}, log)
		observers = append(observers, publisher)
		log.Info("publishing product events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	// 5. Dependency Injection (Wiring Layers)
	faucet, err := units.ToWei(cfg.FaucetEther, units.Ether)
	if err != nil {
		log.Fatal("invalid faucet amount", zap.Error(err))
	}

	productRepo := repository.NewProductRepo(db)
	accountRepo := repository.NewAccountRepo(db)
	transferRepo := repository.NewTransferRepo(db)

	marketService := service.NewMarketplaceService(ledgerRepo, productRepo, accountRepo, transferRepo, db, observers, log)
	authService := service.NewAuthService(accountRepo, faucet)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	handler.RegisterRoutes(app, handler.Routes{
		Marketplace: handler.NewMarketplaceHandler(marketService, m),
		Auth:        handler.NewAuthHandler(authService),
		RequireAuth: middleware.RequireAuth(authService),
		Hub:         wsHub,
		Gatherer:    reg,
	})

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn("kafka writer close failed", zap.Error(err))
		}
	}

	log.Info("server exited")
}
