package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/api/handlers"
	redisCache "github.com/productlens/backend/internal/cache/redis"
	"github.com/productlens/backend/internal/classify"
	"github.com/productlens/backend/internal/extraction/generic"
	"github.com/productlens/backend/internal/extraction/overrides"
	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/extraction/resolver"
	"github.com/productlens/backend/internal/metrics"
	"github.com/productlens/backend/internal/middleware/ratelimit"
	"github.com/productlens/backend/internal/middleware/security"
	"github.com/productlens/backend/internal/middleware/validation"
	"github.com/productlens/backend/internal/product"
	"github.com/productlens/backend/internal/storage/sqlite"
	"github.com/productlens/backend/internal/taxonomy"
	"github.com/productlens/backend/pkg/config"
	appLogger "github.com/productlens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ProductLens API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	if cfg.Classification.SeedTaxonomy {
		if err := sqliteClient.SeedTaxonomy(); err != nil {
			appLogger.Warn("Failed to seed taxonomy", zap.Error(err))
		}
	}

	var resultCache product.ResultCache
	var memoryReader resolver.MemoryReader
	redisClient, err := redisCache.NewClient(cfg.Redis)
	if err != nil {
		// Redis is an accelerator here, not a dependency.
		appLogger.Warn("Redis unavailable, running without cache and selector memory", zap.Error(err))
	} else {
		defer redisClient.Close()
		resultCache = redisClient
		memoryReader = redisClient
	}

	taxonomyCache := taxonomy.NewCache(sqliteClient)
	if err := taxonomyCache.Refresh(context.Background(), true); err != nil {
		appLogger.Warn("Failed to warm taxonomy cache", zap.Error(err))
	}

	engine := classify.NewEngine(taxonomyCache, cfg.Classification.EnrichmentThreshold)

	fetcher := page.NewFetcher(
		time.Duration(cfg.Extraction.FetchTimeoutSec)*time.Second,
		cfg.Extraction.UserAgent,
	)
	fieldResolver := resolver.New(
		memoryReader,
		overrides.DefaultRegistry(),
		generic.NewStrategy(),
		cfg.Extraction.MaxImages,
	)

	service := product.NewService(fetcher, fieldResolver, engine, sqliteClient, resultCache)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.Log})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.Log}))

	extractHandler := handlers.NewExtractHandler(service)
	classifyHandler := handlers.NewClassifyHandler(service)
	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyCache, sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(service)

	api := app.Group("/api/v1")

	api.Post("/extract", extractHandler.HandleExtract)
	api.Get("/extractions/history", extractHandler.GetExtractionHistory)

	api.Post("/classify", classifyHandler.HandleClassify)

	api.Post("/taxonomy/refresh", taxonomyHandler.HandleRefresh)
	api.Get("/taxonomy/stats", taxonomyHandler.HandleStats)

	api.Use("/extract/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/extract/ws", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.Handler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if !taxonomyCache.Loaded() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "taxonomy not loaded",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
