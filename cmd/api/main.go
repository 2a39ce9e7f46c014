package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"doccompare/internal/config"
	"doccompare/internal/database"
	"doccompare/internal/database/migration"
	"doccompare/internal/extract"
	handlers "doccompare/internal/http/handler"
	"doccompare/internal/http/middleware"
	"doccompare/internal/llm"
	"doccompare/internal/logger"
	"doccompare/internal/metrics"
	"doccompare/internal/otel"
	"doccompare/internal/ratelimit"
	"doccompare/internal/repository/postgres"
	"doccompare/internal/service"
	"doccompare/internal/storage"
)

// @title Document Comparison API
// @version 1.0
// @description Compares two contract-like documents with a generative model.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.Location())
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", map[string]any{"error": err})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("failed to initialize tracing", map[string]any{"error": err})
		os.Exit(1)
	}

	// PostgreSQL is optional; it backs the rate limiter when configured
	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			log.Error("failed to connect to database", map[string]any{"error": err})
			os.Exit(1)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Error("failed to migrate database", map[string]any{"error": err})
			os.Exit(1)
		}
	}

	limiter := newLimiter(ctx, cfg, db, log)

	gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		log.Error("failed to initialize model client", map[string]any{"error": err})
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	compareMetrics, err := metrics.NewComparison(reg)
	if err != nil {
		log.Error("failed to register metrics", map[string]any{"error": err})
		os.Exit(1)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Error("failed to register metrics", map[string]any{"error": err})
		os.Exit(1)
	}

	opt := service.DefaultComparisonOptions()
	opt.MaxAttempts = cfg.Comparison.MaxAttempts
	opt.RetryBaseDelay = cfg.Comparison.RetryBaseDelay()
	opt.Temperature = float32(cfg.Gemini.Temperature)
	opt.Metrics = compareMetrics
	opt.Logger = log
	comparator := service.NewComparisonService(gemini, opt)

	// Object storage is optional; without it reports can only be downloaded
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Error("failed to initialize object storage", map[string]any{"error": err})
			os.Exit(1)
		}
	}
	reports := service.NewReportService(objStore, cfg.Report.LinkTTL(), cfg.Location())

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:         db,
		Comparator: comparator,
		Reports:    reports,
		Extractor:  extract.New(),
		Limiter:    limiter,
		Metrics:    compareMetrics,
		Gatherer:   reg,
		CORSOrigin: cfg.CORSOrigin(),
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down", nil)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown failed", map[string]any{"error": err})
		}
	}()

	log.Info("server starting", map[string]any{
		"port":             cfg.Port,
		"model":            gemini.Name(),
		"rate_limit_store": cfg.RateLimit.Store,
		"storage_enabled":  objStore != nil,
	})
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("failed to start server", map[string]any{"error": err})
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error("failed to flush traces", map[string]any{"error": err})
	}
}

func newLimiter(ctx context.Context, cfg *config.AppConfig, db *sql.DB, log *logger.Logger) ratelimit.Limiter {
	rl := cfg.RateLimit
	switch rl.Store {
	case config.RateLimitStorePostgres:
		repo := postgres.NewRateLimitPostgres(db)
		go ratelimit.RunJanitor(ctx, repo, time.Duration(rl.PurgeIntervalSec)*time.Second, log)
		return ratelimit.NewSlidingWindow(repo, rl.Max, rl.Window(), rl.Prefix)
	case config.RateLimitStoreMemory:
		return ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(2*rl.Window(), rl.MemoryMaxKeys), rl.Max, rl.Window(), rl.Prefix)
	default:
		fields := map[string]any{"component": "rate_limit", "store": rl.Store}
		if cfg.IsProduction() {
			log.Error("rate limiting disabled, /api/compare is unprotected", fields)
		} else {
			log.Warn("rate limiting disabled", fields)
		}
		return ratelimit.Unlimited{}
	}
}
