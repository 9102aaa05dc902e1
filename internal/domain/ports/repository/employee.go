// File: internal/domain/ports/repository/employee.go
package repository

import (
	"context"

	"chatwarden/internal/domain/model"
)

// EmployeeRepository exposes owner-scoped reads/writes over the local
// projection of remote users. All lookups are scoped by owner — there is no
// global employee namespace (spec.md §9).
type EmployeeRepository interface {
	ActiveByOwner(ctx context.Context, tx Tx, ownerID int64) ([]*model.Employee, error)
	ByID(ctx context.Context, tx Tx, ownerID, employeeID int64) (*model.Employee, error)
	ByTelegramUserID(ctx context.Context, tx Tx, ownerID, telegramUserID int64) (*model.Employee, error)
	ByTelegramUsername(ctx context.Context, tx Tx, ownerID int64, username string) (*model.Employee, error)

	Create(ctx context.Context, tx Tx, e *model.Employee) (*model.Employee, error)

	// Update persists mutable fields (full_name, telegram_username,
	// telegram_user_id, is_active) for an existing employee, scoped by owner.
	Update(ctx context.Context, tx Tx, e *model.Employee) error
}
