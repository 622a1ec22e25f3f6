package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("KYC_API_BASE_URL", "http://kyc.internal")
	t.Setenv("CATALOG_CACHE_TTL", "90")
	t.Setenv("AUDIT_RETENTION", "720h")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://kyc.internal", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 90*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, 720*time.Hour, cfg.Worker.AuditRetention)
	assert.Equal(t, "CRIMINAL_BACKGROUND_CHECK", cfg.Reverification.MetadataActionID)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9090"
backend:
  base_url: "http://from-file"
  timeout: 3s
catalog_cache_ttl: 10m
reverification:
  metadata_action_id: SANCTIONS_SCREENING
storage:
  bucket: reports
worker:
  pending_audit_timeout: 15m
`)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "http://from-file", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "SANCTIONS_SCREENING", cfg.Reverification.MetadataActionID)
	assert.Equal(t, 15*time.Minute, cfg.Worker.PendingAuditTimeout)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.Enabled())

	client := cfg.Backend.Client()
	assert.Equal(t, "http://from-file", client.BaseURL)
	assert.Equal(t, 3*time.Second, client.Timeout)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "dashboard.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2160*time.Hour, cfg.Worker.AuditRetention)
	assert.Equal(t, "kyc-reports", cfg.Storage.Bucket)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "backend: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "catalog_cache_ttl: 1m\n"))
	assert.ErrorContains(t, err, "KYC_API_BASE_URL")
}

func TestParseDurationOrDefault(t *testing.T) {
	assert.Equal(t, time.Minute, parseDurationOrDefault("", time.Minute))
	assert.Equal(t, 30*time.Second, parseDurationOrDefault("30", time.Minute))
	assert.Equal(t, 2*time.Hour, parseDurationOrDefault("2h", time.Minute))
	assert.Equal(t, time.Minute, parseDurationOrDefault("soon", time.Minute))
}
