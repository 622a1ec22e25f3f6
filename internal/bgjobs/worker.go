package bgjobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"kyc-dashboard.gomodule/internal/config"
	"kyc-dashboard.gomodule/internal/db/dashboarddb"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// CatalogSource fetches the verification-type catalog from the backend.
type CatalogSource interface {
	ListReverificationTypes(ctx context.Context) (reverification.Catalog, error)
}

// AuditMaintenance is the part of the audit store the retention job uses.
type AuditMaintenance interface {
	MarkStalePendingAsFailed(ctx context.Context, cutoff pgtype.Timestamp) (int64, error)
	DeleteAuditEntriesBefore(ctx context.Context, cutoff pgtype.Timestamp) (int64, error)
}

// AuditTxFunc runs fn inside a single audit database transaction.
type AuditTxFunc func(ctx context.Context, fn func(AuditMaintenance) error) error

// PoolTx runs audit maintenance in transactions on pool.
func PoolTx(pool *pgxpool.Pool) AuditTxFunc {
	return func(ctx context.Context, fn func(AuditMaintenance) error) error {
		return server.WithAuditTx(ctx, pool, func(q *dashboarddb.Queries) error {
			return fn(q)
		})
	}
}

// Worker runs the dashboard's background jobs: keeping the catalog cache
// warm and pruning the audit log.
type Worker struct {
	backend  CatalogSource
	catalogs server.CatalogCache
	auditTx  AuditTxFunc
	config   config.WorkerConfig
	log      *slog.Logger
	now      func() time.Time
}

// NewWorker creates a worker. A nil catalogs or auditTx disables the jobs
// that need it.
func NewWorker(
	backend CatalogSource,
	catalogs server.CatalogCache,
	auditTx AuditTxFunc,
	cfg config.WorkerConfig,
	log *slog.Logger,
) *Worker {
	return &Worker{
		backend:  backend,
		catalogs: catalogs,
		auditTx:  auditTx,
		config:   cfg,
		log:      log.With("component", "dashboard-bgjobs-worker"),
		now:      time.Now,
	}
}

// Run launches one goroutine per enabled job and returns immediately.
// Goroutines exit when ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("starting background jobs worker",
		"catalog_refresh_interval", w.config.CatalogRefreshInterval,
		"audit_retention_interval", w.config.AuditRetentionInterval,
		"audit_retention", w.config.AuditRetention,
		"pending_audit_timeout", w.config.PendingAuditTimeout,
	)

	if w.catalogs != nil {
		go w.runPeriodicJob(ctx, "catalog-refresh",
			w.config.CatalogRefreshInterval,
			w.refreshCatalog)
	} else {
		w.log.Info("catalog cache not configured, catalog-refresh disabled")
	}

	if w.auditTx != nil {
		go w.runPeriodicJob(ctx, "audit-retention",
			w.config.AuditRetentionInterval,
			w.pruneAuditLog)
	} else {
		w.log.Info("audit database not configured, audit-retention disabled")
	}
}

// runPeriodicJob runs a job function in a loop with the given interval.
func (w *Worker) runPeriodicJob(
	ctx context.Context,
	jobName string,
	interval time.Duration,
	jobFn func(context.Context),
) {
	if interval < time.Second {
		interval = time.Second // Minimum 1 second to avoid busy-looping
	}

	w.log.Debug("starting periodic job",
		"job", jobName,
		"interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run job immediately on start
	jobFn(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("periodic job stopping", "job", jobName)
			return
		case <-ticker.C:
			jobFn(ctx)
		}
	}
}

func (w *Worker) refreshCatalog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	catalog, err := w.backend.ListReverificationTypes(ctx)
	if err != nil {
		w.log.Error("failed to fetch verification types", "error", err)
		return
	}
	if err := w.catalogs.Set(ctx, catalog); err != nil {
		w.log.Error("failed to store catalog in cache", "error", err)
		return
	}
	w.log.Debug("refreshed catalog cache", "types", len(catalog))
}

// pruneAuditLog fails submissions left pending past the timeout and deletes
// entries older than the retention window, in one transaction.
func (w *Worker) pruneAuditLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	now := w.now().UTC()
	pendingCutoff := pgtype.Timestamp{Time: now.Add(-w.config.PendingAuditTimeout), Valid: true}
	retentionCutoff := pgtype.Timestamp{Time: now.Add(-w.config.AuditRetention), Valid: true}

	var failed, deleted int64
	err := w.auditTx(ctx, func(q AuditMaintenance) error {
		var err error
		if failed, err = q.MarkStalePendingAsFailed(ctx, pendingCutoff); err != nil {
			return err
		}
		deleted, err = q.DeleteAuditEntriesBefore(ctx, retentionCutoff)
		return err
	})
	if err != nil {
		w.log.Error("failed to prune audit log", "error", err)
		return
	}
	w.log.Debug("pruned audit log", "stale_pending_failed", failed, "deleted", deleted)
}
