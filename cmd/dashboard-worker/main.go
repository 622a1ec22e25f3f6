package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"kyc-dashboard.gomodule/internal/bgjobs"
	"kyc-dashboard.gomodule/internal/cache"
	"kyc-dashboard.gomodule/internal/config"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/internal/server"
)

func main() {
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
	logger.Info("starting dashboard-worker", "log_level", logLevel.String())

	cfg, err := config.Load(os.Getenv("DASHBOARD_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	backend, err := kycapi.New(cfg.Backend.Client())
	if err != nil {
		logger.Error("failed to create backend client", "error", err)
		os.Exit(1)
	}

	var catalogs server.CatalogCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		catalogs = cache.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)
	}

	var auditTx bgjobs.AuditTxFunc
	if cfg.DatabaseURL != "" {
		dbConn, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to dashboard DB", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()
		logger.Info("connected to dashboard database")
		auditTx = bgjobs.PoolTx(dbConn)
	}

	// Setup graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	worker := bgjobs.NewWorker(backend, catalogs, auditTx, cfg.Worker, logger)
	go worker.Run(ctx)

	logger.Info("dashboard-worker started, background jobs running")

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("dashboard-worker stopped")
}
