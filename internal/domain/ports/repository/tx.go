// File: internal/domain/ports/repository/tx.go
package repository

import "context"

// Tx is an opaque transaction/connection handle threaded through repository
// calls. The concrete type is infra-defined (pgx.Tx for Postgres).
// Repositories MUST gracefully accept a nil Tx (pool-direct path); the
// engine deliberately issues most per-chat writes outside any single
// transaction (spec.md §4.1: writes are tolerant of torn state because the
// next cycle re-converges).
type Tx interface{}

// TransactionManager runs fn inside a single database transaction. Used
// only where a multi-statement write must be atomic (first-time chat
// creation, §4.5), never as the default for per-chat reconciliation.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
