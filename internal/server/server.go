package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kyc-dashboard.gomodule/internal/db/dashboarddb"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/internal/middleware"
	"kyc-dashboard.gomodule/internal/storage"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// ErrCatalogUnavailable indicates the verification-type catalog could not be
// loaded from cache or backend (maps to 502)
var ErrCatalogUnavailable = errors.New("verification type catalog unavailable")

// CatalogCache is the read-through cache in front of the backend catalog.
type CatalogCache interface {
	Get(ctx context.Context) (reverification.Catalog, bool, error)
	Set(ctx context.Context, catalog reverification.Catalog) error
}

// ReportArchive keeps copies of downloaded verification reports.
type ReportArchive interface {
	Get(ctx context.Context, key string) (storage.ArchivedReport, error)
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// AuditLog records reverification submissions and cancellations.
type AuditLog interface {
	CreateAuditEntry(ctx context.Context, arg dashboarddb.CreateAuditEntryParams) (dashboarddb.ReverificationAudit, error)
	CompleteAuditEntry(ctx context.Context, arg dashboarddb.CompleteAuditEntryParams) error
	ListAuditEntries(ctx context.Context, arg dashboarddb.ListAuditEntriesParams) ([]dashboarddb.ReverificationAudit, error)
}

type Server struct {
	Backend *kycapi.Client
	Audit   AuditLog

	// Optional; nil disables caching / archiving
	Catalogs CatalogCache
	Reports  ReportArchive

	Policy reverification.Policy
	Log    *slog.Logger

	// Now defaults to time.Now
	Now func() time.Time
}

// Logger returns the logger from context with request ID, or falls back to base logger.
func (s *Server) Logger(ctx context.Context) *slog.Logger {
	return middleware.LoggerFromContext(ctx, s.Log)
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Catalog returns the verification-type catalog, from cache when possible.
// Cache failures are logged and fall through to the backend.
func (s *Server) Catalog(ctx context.Context, refresh bool) (reverification.Catalog, error) {
	log := s.Logger(ctx)

	if s.Catalogs != nil && !refresh {
		catalog, ok, err := s.Catalogs.Get(ctx)
		if err != nil {
			log.Warn("failed to read catalog cache", "error", err)
		} else if ok {
			return catalog, nil
		}
	}

	catalog, err := s.Backend.ListReverificationTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	if s.Catalogs != nil {
		if err := s.Catalogs.Set(ctx, catalog); err != nil {
			log.Warn("failed to store catalog in cache", "error", err)
		}
	}
	return catalog, nil
}

// Validator builds a validator over catalog using the server's policy and clock.
func (s *Server) Validator(catalog reverification.Catalog) *reverification.Validator {
	v := reverification.NewValidator(catalog, s.Policy)
	v.Now = s.now
	return v
}

// Today returns the current time on the server clock. Report archive keys use its UTC day.
func (s *Server) Today() time.Time {
	return s.now()
}
