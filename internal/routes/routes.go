// Package routes defines the API routing configuration.
// It builds the service graph from configuration and mounts every
// handler under /api/v1.
package routes

import (
	"context"

	"bulkpay/internal/config"
	"bulkpay/internal/handlers"
	"bulkpay/internal/repositories"
	"bulkpay/internal/repositories/cache"
	"bulkpay/internal/services/account"
	"bulkpay/internal/services/bulk"
	"bulkpay/internal/services/gateway"
	"bulkpay/internal/services/recorder"
	"bulkpay/internal/services/transfer"
	"bulkpay/internal/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies holds the handlers and the background dispatcher.
type Dependencies struct {
	Transfer   *handlers.TransferHandler
	Bulk       *handlers.BulkHandler
	Health     *handlers.HealthHandler
	Dispatcher *bulk.Dispatcher
}

// NewDependencies wires repositories, services and handlers.
func NewDependencies(db *gorm.DB, cfg *config.Config, cacheService *cache.CacheService) (*Dependencies, error) {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	jobRepo := repositories.NewBatchJobRepository(db)
	recordRepo := repositories.NewTransferRecordRepository(db)

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	policy := gateway.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.SwitchMaxAttempts
	policy.BackoffBase = cfg.SwitchBackoff
	policy.Timeout = cfg.SwitchTimeout
	switchClient := gateway.NewClient(gateway.Options{
		BaseURL:     cfg.SwitchBaseURL,
		DisplayName: cfg.SwitchDisplayName,
		Policy:      policy,
	})

	var accountCache account.Cache
	var cachePinger handlers.Pinger
	if cacheService != nil {
		accountCache = cacheService
		cachePinger = cacheService
	}

	// Initialize services
	accountService := account.NewService(accountRepo, accountCache)
	transferRecorder := recorder.New(recordRepo)
	transferService := transfer.NewService(accountService, switchClient, transferRecorder)
	processor := bulk.NewProcessor(jobRepo, bulk.FileOpener{Files: files}, switchClient, transferRecorder)

	dispatcher, err := bulk.NewDispatcher(processor, jobRepo, bulk.DispatcherConfig{
		QueueSize: cfg.DispatchQueue,
		Schedule:  cfg.SweepSchedule,
	})
	if err != nil {
		return nil, err
	}

	dbPinger := handlers.PingFunc(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	return &Dependencies{
		Transfer:   handlers.NewTransferHandler(transferService),
		Bulk:       handlers.NewBulkHandler(jobRepo, recordRepo, accountService, files, dispatcher),
		Health:     handlers.NewHealthHandler(dbPinger, cachePinger),
		Dispatcher: dispatcher,
	}, nil
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the bulk transfer API",
			"version": "1.0.0",
			"docs":    "/api/v1",
		})
	})
	app.Get("/health", deps.Health.Check)

	api := app.Group("/api/v1")
	api.Get("/health", deps.Health.Check)

	setupBulkRoutes(api, deps.Bulk)
	setupTransferRoutes(api, deps.Transfer)
}

func setupBulkRoutes(router fiber.Router, h *handlers.BulkHandler) {
	b := router.Group("/bulk")
	b.Post("/upload", h.Upload)
	b.Get("/status/:id", h.Status)
	b.Get("/history", h.History)
	b.Get("/export/:format/:id", h.Export)
}

func setupTransferRoutes(router fiber.Router, h *handlers.TransferHandler) {
	t := router.Group("/transfers")
	t.Get("/p2p", h.Info)
	t.Post("/p2p", h.Transfer)
}
