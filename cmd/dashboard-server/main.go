package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"kyc-dashboard.gomodule/internal/cache"
	"kyc-dashboard.gomodule/internal/config"
	"kyc-dashboard.gomodule/internal/db/dashboarddb"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/internal/middleware"
	"kyc-dashboard.gomodule/internal/routes"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/internal/storage"
)

func main() {
	// A .env file is optional; real environment variables win
	_ = godotenv.Load()

	// Configure log level from environment (default: INFO)
	logLevel := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG", "debug":
		logLevel = slog.LevelDebug
	case "WARN", "warn":
		logLevel = slog.LevelWarn
	case "ERROR", "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	}))
	logger.Info("starting dashboard-server", "log_level", logLevel.String())

	cfg, err := config.Load(os.Getenv("DASHBOARD_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded config", "environment", cfg.Environment, "backend", cfg.Backend.BaseURL)

	ctx := context.Background()

	// Connect to dashboard database (audit log)
	dbConn, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to dashboard DB", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	logger.Info("connected to dashboard database")

	backend, err := kycapi.New(cfg.Backend.Client())
	if err != nil {
		logger.Error("failed to create backend client", "error", err)
		os.Exit(1)
	}

	s := &server.Server{
		Backend: backend,
		Audit:   dashboarddb.New(dbConn),
		Policy:  cfg.Reverification,
		Log:     logger,
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		s.Catalogs = cache.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)
		logger.Info("catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
	}

	if cfg.Storage.Enabled() {
		s.Reports = storage.NewReportArchive(cfg.Storage)
		logger.Info("report archive enabled", "bucket", cfg.Storage.Bucket)
	}

	// Setup graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	mux := http.NewServeMux()
	routes.RegisterAdminRoutes(mux, s)

	// Wrap mux with middleware (CORS must be outermost to handle preflight)
	handler := middleware.CORS(cfg.CORSAllowedOrigins)(middleware.RequestID(logger)(mux))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	go func() {
		logger.Info("dashboard-server HTTP starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("shutting down dashboard-server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("dashboard-server stopped")
}
