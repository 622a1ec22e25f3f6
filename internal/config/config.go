package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/internal/storage"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// Config is the resolved runtime configuration for both binaries.
type Config struct {
	HTTPAddr           string        `yaml:"http_addr"`
	Environment        string        `yaml:"environment"`
	CORSAllowedOrigins string        `yaml:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`

	Backend BackendConfig `yaml:"backend"`

	DatabaseURL     string        `yaml:"database_url"`
	RedisURL        string        `yaml:"redis_url"`
	CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl"`

	Storage storage.Config `yaml:"storage"`

	Reverification reverification.Policy `yaml:"reverification"`

	Worker WorkerConfig `yaml:"worker"`
}

// BackendConfig locates the external KYC API
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client settings for kycapi.New
func (b BackendConfig) Client() kycapi.Config {
	return kycapi.Config{BaseURL: b.BaseURL, APIKey: b.APIKey, Timeout: b.Timeout}
}

// WorkerConfig holds background job intervals
type WorkerConfig struct {
	CatalogRefreshInterval time.Duration `yaml:"catalog_refresh_interval"`
	AuditRetentionInterval time.Duration `yaml:"audit_retention_interval"`
	AuditRetention         time.Duration `yaml:"audit_retention"`
	PendingAuditTimeout    time.Duration `yaml:"pending_audit_timeout"`
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":8080",
		Environment:     "PROD",
		ShutdownTimeout: 30 * time.Second,
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		CatalogCacheTTL: 5 * time.Minute,
		Storage: storage.Config{
			Region: "us-east-1",
		},
		Reverification: reverification.DefaultPolicy(),
		Worker: WorkerConfig{
			CatalogRefreshInterval: 5 * time.Minute,
			AuditRetentionInterval: 1 * time.Hour,
			AuditRetention:         90 * 24 * time.Hour,
			PendingAuditTimeout:    1 * time.Hour,
		},
	}
}

// Load resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.Environment = getEnvOrDefault("ENV", cfg.Environment)
	cfg.CORSAllowedOrigins = getEnvOrDefault("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.ShutdownTimeout = parseDurationOrDefault(os.Getenv("SHUTDOWN_TIMEOUT"), cfg.ShutdownTimeout)

	cfg.Backend.BaseURL = getEnvOrDefault("KYC_API_BASE_URL", cfg.Backend.BaseURL)
	cfg.Backend.APIKey = getEnvOrDefault("KYC_API_KEY", cfg.Backend.APIKey)
	cfg.Backend.Timeout = parseDurationOrDefault(os.Getenv("KYC_API_TIMEOUT"), cfg.Backend.Timeout)

	cfg.DatabaseURL = getEnvOrDefault("DASHBOARD_DB_CONN", cfg.DatabaseURL)
	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.CatalogCacheTTL = parseDurationOrDefault(os.Getenv("CATALOG_CACHE_TTL"), cfg.CatalogCacheTTL)

	cfg.Storage.Endpoint = getEnvOrDefault("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.AccessKeyID = getEnvOrDefault("S3_ACCESS_KEY_ID", cfg.Storage.AccessKeyID)
	cfg.Storage.SecretAccessKey = getEnvOrDefault("S3_SECRET_ACCESS_KEY", cfg.Storage.SecretAccessKey)
	cfg.Storage.Region = getEnvOrDefault("S3_REGION", cfg.Storage.Region)
	cfg.Storage.Bucket = getEnvOrDefault("S3_BUCKET", cfg.Storage.Bucket)

	cfg.Reverification.MetadataActionID = getEnvOrDefault("REVERIFICATION_METADATA_ACTION_ID", cfg.Reverification.MetadataActionID)

	cfg.Worker.CatalogRefreshInterval = parseDurationOrDefault(os.Getenv("CATALOG_REFRESH_INTERVAL"), cfg.Worker.CatalogRefreshInterval)
	cfg.Worker.AuditRetentionInterval = parseDurationOrDefault(os.Getenv("AUDIT_RETENTION_INTERVAL"), cfg.Worker.AuditRetentionInterval)
	cfg.Worker.AuditRetention = parseDurationOrDefault(os.Getenv("AUDIT_RETENTION"), cfg.Worker.AuditRetention)
	cfg.Worker.PendingAuditTimeout = parseDurationOrDefault(os.Getenv("PENDING_AUDIT_TIMEOUT"), cfg.Worker.PendingAuditTimeout)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("KYC_API_BASE_URL is required")
	}
	if c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("catalog cache ttl must be positive, got %s", c.CatalogCacheTTL)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// parseDurationOrDefault parses a duration string or returns the default value.
// A bare integer is read as seconds.
func parseDurationOrDefault(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

