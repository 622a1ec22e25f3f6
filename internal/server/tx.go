package server

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"kyc-dashboard.gomodule/internal/db/dashboarddb"
)

// WithAuditTx executes a function within a dashboard database transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func WithAuditTx(ctx context.Context, pool *pgxpool.Pool, fn func(*dashboarddb.Queries) error) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return fn(dashboarddb.New(tx))
	})
}
