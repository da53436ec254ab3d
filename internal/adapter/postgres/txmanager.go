package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/syngdict/pkg/ctxutil"
)

// publishLockKey is the transaction-level advisory lock held by every
// publish ("syng" in ASCII).
const publishLockKey int64 = 0x73796e67

// TxManager runs a build publish in one transaction. Publishes hold an
// advisory lock for their whole transaction, so two compilers publishing to
// the same database commit one after the other and the newest created_at is
// always the last committed build.
//
// Nested RunInTx calls are not supported.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx opens a read-committed transaction, takes the publish lock and
// runs fn with the transaction in its context. When ctx carries a build id
// the session's application_name names it until the transaction ends.
// fn's error or panic rolls everything back; the panic is re-raised.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := beginPublish(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := fn(withPublishTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback publish: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit publish: %w", err)
	}
	return nil
}

func beginPublish(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, publishLockKey); err != nil {
		return fmt.Errorf("publish lock: %w", err)
	}

	buildID, ok := ctxutil.BuildIDFromCtx(ctx)
	if !ok {
		return nil
	}
	name := applicationName + " publish " + buildID.String()
	if _, err := tx.Exec(ctx, `SELECT set_config('application_name', $1, true)`, name); err != nil {
		return fmt.Errorf("tag publish session: %w", err)
	}
	return nil
}
