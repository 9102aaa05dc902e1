// File: internal/infra/db/postgres/chat_employee_repo.go
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"chatwarden/internal/domain"
	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/repository"
)

// ChatEmployeeRepo is a pgx-backed repository.ChatEmployeeRepository. The
// natural key (chat_id, employee_id) is globally unique; user_id is carried
// for scoped reads only (spec.md §9).
type ChatEmployeeRepo struct {
	pool *pgxpool.Pool
}

var _ repository.ChatEmployeeRepository = (*ChatEmployeeRepo)(nil)

func NewChatEmployeeRepo(pool *pgxpool.Pool) *ChatEmployeeRepo {
	return &ChatEmployeeRepo{pool: pool}
}

const chatEmployeeColumns = `chat_id, employee_id, user_id, is_active, is_admin, created_at, updated_at`

func scanChatEmployee(row pgx.Row) (*model.ChatEmployee, error) {
	ce := &model.ChatEmployee{}
	err := row.Scan(&ce.ChatID, &ce.EmployeeID, &ce.UserID, &ce.IsActive, &ce.IsAdmin, &ce.CreatedAt, &ce.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ce, nil
}

func (r *ChatEmployeeRepo) ByChat(ctx context.Context, tx repository.Tx, chatID int64) ([]*model.ChatEmployee, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT `+chatEmployeeColumns+` FROM chat_employees WHERE chat_id = $1`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ChatEmployee
	for rows.Next() {
		ce := &model.ChatEmployee{}
		if err := rows.Scan(&ce.ChatID, &ce.EmployeeID, &ce.UserID, &ce.IsActive, &ce.IsAdmin, &ce.CreatedAt, &ce.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ce)
	}
	return out, rows.Err()
}

func (r *ChatEmployeeRepo) Get(ctx context.Context, tx repository.Tx, chatID, employeeID int64) (*model.ChatEmployee, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT `+chatEmployeeColumns+` FROM chat_employees WHERE chat_id = $1 AND employee_id = $2`, chatID, employeeID)
	if err != nil {
		return nil, err
	}
	return scanChatEmployee(row)
}

func (r *ChatEmployeeRepo) Upsert(ctx context.Context, tx repository.Tx, ce *model.ChatEmployee) error {
	_, err := execSQL(ctx, r.pool, tx, `
		INSERT INTO chat_employees (chat_id, employee_id, user_id, is_active, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (chat_id, employee_id) DO UPDATE
		SET is_active = EXCLUDED.is_active, is_admin = EXCLUDED.is_admin, updated_at = now()`,
		ce.ChatID, ce.EmployeeID, ce.UserID, ce.IsActive, ce.IsAdmin)
	return err
}

func (r *ChatEmployeeRepo) Deactivate(ctx context.Context, tx repository.Tx, chatID, employeeID int64) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE chat_employees SET is_active = false, updated_at = now() WHERE chat_id = $1 AND employee_id = $2`,
		chatID, employeeID)
	return err
}

func (r *ChatEmployeeRepo) Delete(ctx context.Context, tx repository.Tx, chatID, employeeID int64) error {
	_, err := execSQL(ctx, r.pool, tx,
		`DELETE FROM chat_employees WHERE chat_id = $1 AND employee_id = $2`, chatID, employeeID)
	return err
}
