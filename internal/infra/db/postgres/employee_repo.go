// File: internal/infra/db/postgres/employee_repo.go
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

// EmployeeRepo is a pgx-backed repository.EmployeeRepository.
type EmployeeRepo struct {
	pool *pgxpool.Pool
}

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

func NewEmployeeRepo(pool *pgxpool.Pool) *EmployeeRepo {
	return &EmployeeRepo{pool: pool}
}

const employeeColumns = `employee_id, user_id, telegram_user_id, telegram_username, full_name, is_active, is_external, is_bot`

func scanEmployee(row pgx.Row) (*model.Employee, error) {
	e := &model.Employee{}
	err := row.Scan(&e.EmployeeID, &e.UserID, &e.TelegramUserID, &e.TelegramUsername, &e.FullName, &e.IsActive, &e.IsExternal, &e.IsBot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EmployeeRepo) ActiveByOwner(ctx context.Context, tx repository.Tx, ownerID int64) ([]*model.Employee, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 AND is_active = true`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Employee
	for rows.Next() {
		e := &model.Employee{}
		if err := rows.Scan(&e.EmployeeID, &e.UserID, &e.TelegramUserID, &e.TelegramUsername, &e.FullName, &e.IsActive, &e.IsExternal, &e.IsBot); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EmployeeRepo) ByID(ctx context.Context, tx repository.Tx, ownerID, employeeID int64) (*model.Employee, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 AND employee_id = $2`, ownerID, employeeID)
	if err != nil {
		return nil, err
	}
	return scanEmployee(row)
}

func (r *EmployeeRepo) ByTelegramUserID(ctx context.Context, tx repository.Tx, ownerID, telegramUserID int64) (*model.Employee, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 AND telegram_user_id = $2`, ownerID, telegramUserID)
	if err != nil {
		return nil, err
	}
	return scanEmployee(row)
}

func (r *EmployeeRepo) ByTelegramUsername(ctx context.Context, tx repository.Tx, ownerID int64, username string) (*model.Employee, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 AND lower(telegram_username) = lower($2)`, ownerID, username)
	if err != nil {
		return nil, err
	}
	return scanEmployee(row)
}

func (r *EmployeeRepo) Create(ctx context.Context, tx repository.Tx, e *model.Employee) (*model.Employee, error) {
	row, err := pickRow(ctx, r.pool, tx, `
		INSERT INTO employees (user_id, telegram_user_id, telegram_username, full_name, is_active, is_external, is_bot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+employeeColumns,
		e.UserID, e.TelegramUserID, e.TelegramUsername, e.FullName, e.IsActive, e.IsExternal, e.IsBot)
	if err != nil {
		return nil, err
	}
	return scanEmployee(row)
}

func (r *EmployeeRepo) Update(ctx context.Context, tx repository.Tx, e *model.Employee) error {
	_, err := execSQL(ctx, r.pool, tx, `
		UPDATE employees
		SET telegram_user_id = $1, telegram_username = $2, full_name = $3, is_active = $4
		WHERE employee_id = $5 AND user_id = $6`,
		e.TelegramUserID, e.TelegramUsername, e.FullName, e.IsActive, e.EmployeeID, e.UserID)
	return err
}
