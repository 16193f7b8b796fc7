package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotTx reads several statements against one consistent snapshot.
var SnapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// WithTx runs fn inside a transaction, read committed unless opts says otherwise.
// The transaction is rolled back when fn fails.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error, opts ...pgx.TxOptions) error {
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if len(opts) > 0 {
		txOpts = opts[0]
	}
	tx, err := pool.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	return nil
}
