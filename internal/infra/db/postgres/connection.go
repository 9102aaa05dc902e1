// File: internal/infra/db/postgres/connection.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"chatwarden/internal/domain/ports/repository"
)

// NewPgxPool creates a pgx connection pool sized for the reconciliation
// workload: a small steady-state pool with headroom for bursts of short
// per-chat writes (spec.md §4.1: target 5, overflow 10, pre-ping,
// 30-minute recycle).
func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 15
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = 5
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect pgxpool: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// TryConnect attempts to create a pgx pool with retry/backoff and a
// readiness ping, used by cmd/app at startup so a slow-to-come-up database
// does not abort the process (the only fatal failure per spec.md §7 is pool
// initialisation never succeeding at all).
func TryConnect(ctx context.Context, dsn string, maxConns int32, maxWait time.Duration) (*pgxpool.Pool, error) {
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}

	deadline := time.Now().Add(maxWait)
	backoff := 200 * time.Millisecond
	var lastErr error

	for {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := NewPgxPool(dctx, dsn, maxConns)
		cancel()

		if err == nil {
			pctx, pcancel := context.WithTimeout(ctx, 3*time.Second)
			var one int
			qerr := pool.QueryRow(pctx, "select 1").Scan(&one)
			pcancel()

			if qerr == nil && one == 1 {
				return pool, nil
			}
			lastErr = qerr
			pool.Close()
		} else {
			lastErr = err
		}

		if time.Now().After(deadline) {
			break
		}

		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff *= 2
			if backoff > 2*time.Second {
				backoff = 2 * time.Second
			}
		}
	}

	return nil, fmt.Errorf("connect pgxpool (retry for %s) failed: %w", maxWait, lastErr)
}

// ClosePgxPool is a convenience wrapper safe to call on a nil pool.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

// executor is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// repository method run identically whether or not it was handed a live
// transaction.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func getExecutor(pool *pgxpool.Pool, tx repository.Tx) (executor, error) {
	if tx == nil {
		return pool, nil
	}
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, fmt.Errorf("postgres: unexpected tx type %T", tx)
	}
	return pgxTx, nil
}

func pickRow(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...any) (pgx.Row, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.QueryRow(ctx, sql, args...), nil
}

func queryRows(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...any) (pgx.Rows, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.Query(ctx, sql, args...)
}

func execSQL(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...any) (pgconn.CommandTag, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.Exec(ctx, sql, args...)
}
