// File: internal/infra/db/postgres/transaction_manager.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"chatwarden/internal/domain/ports/repository"
)

// PgxTxManager runs a function inside a single pgx transaction. The engine
// reserves this for the one multi-statement write that must be atomic —
// first-time chat creation (spec.md §4.5) — everything else is issued
// outside any transaction, tolerating torn writes across cycles (spec.md
// §4.1).
type PgxTxManager struct {
	pool *pgxpool.Pool
}

var _ repository.TransactionManager = (*PgxTxManager)(nil)

func NewTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{pool: pool}
}

func (m *PgxTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if fn == nil {
		return fmt.Errorf("nil tx function")
	}
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
