// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulkpay/internal/config"
	"bulkpay/internal/middleware"
	"bulkpay/internal/repositories"
	"bulkpay/internal/repositories/cache"
	"bulkpay/internal/routes"
	applog "bulkpay/internal/utils/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// main initializes and starts the HTTP server.
// It performs the following setup:
// - Loads configuration
// - Initializes database connection and cache
// - Sets up dependency injection and the batch dispatcher
// - Configures routes
// - Starts the HTTP server and shuts it down on SIGINT/SIGTERM
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applog.SetLevel(cfg.LogLevel)
	defer applog.Close()

	db, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repositories.CloseDB(db)
	go logPoolStats(db)

	cacheService := newCacheService(cfg)
	defer func() {
		if err := cacheService.Close(); err != nil {
			applog.Warning("Failed to close cache: %v", err)
		}
	}()

	deps, err := routes.NewDependencies(db, cfg, cacheService)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Dispatcher.Start(ctx)
	defer deps.Dispatcher.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "bulkpay",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(recover.New())

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,OPTIONS",
		AllowCredentials: true,
	}))

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/v1/bulk/upload", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	// Routes
	routes.SetupRoutes(app, deps)

	go func() {
		<-ctx.Done()
		applog.Info("Shutting down HTTP server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			applog.Error("HTTP shutdown failed: %v", err)
		}
	}()

	applog.Info("Listening on :%s (switch %s)", cfg.Port, cfg.SwitchBaseURL)
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error("Server stopped: %v", err)
	}
}

// newCacheService uses Redis when REDIS_HOST is set and reachable, and
// an in-process cache otherwise.
func newCacheService(cfg *config.Config) *cache.CacheService {
	if cfg.RedisHost != "" {
		client := cache.NewRedisClient(&cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := cache.NewRedisStore(client)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := store.Ping(ctx)
		if err == nil {
			applog.Info("Redis connected at %s:%s", cfg.RedisHost, cfg.RedisPort)
			return cache.NewCacheService(store, cfg.CacheTTL)
		}
		applog.Warning("Redis unavailable, using in-process cache: %v", err)
		_ = store.Close()
	}
	return cache.NewCacheService(cache.NewMemoryStore(cfg.CacheTTL, 2*cfg.CacheTTL), cfg.CacheTTL)
}

// logPoolStats reports the connection pool once a minute.
func logPoolStats(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		stats := sqlDB.Stats()
		applog.Debug("DB Stats: Open=%d, Idle=%d, InUse=%d, WaitCount=%d, WaitDuration=%s",
			stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
	}
}
