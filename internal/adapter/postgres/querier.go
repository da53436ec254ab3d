package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is what dictstore runs on: Exec and SendBatch for publishing,
// QueryRow for single values and pgxscan's Query for word rows.
type Querier interface {
	pgxscan.Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

type publishTxKey struct{}

func withPublishTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, publishTxKey{}, tx)
}

// QuerierFromCtx returns the publish transaction opened by TxManager when ctx
// carries one, otherwise the pool.
func QuerierFromCtx(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(publishTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}
