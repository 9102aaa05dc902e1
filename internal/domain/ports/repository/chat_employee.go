// File: internal/domain/ports/repository/chat_employee.go
package repository

import (
	"context"

	"chatwarden/internal/domain/model"
)

// ChatEmployeeRepository manages the membership link table. The natural key
// (chat_id, employee_id) is globally unique; user_id is denormalised on the
// row for scoped reads only (spec.md §9).
type ChatEmployeeRepository interface {
	ByChat(ctx context.Context, tx Tx, chatID int64) ([]*model.ChatEmployee, error)
	Get(ctx context.Context, tx Tx, chatID, employeeID int64) (*model.ChatEmployee, error)

	// Upsert inserts or updates a link on conflict(chat_id, employee_id), so
	// concurrent upserts between sibling passes never duplicate a row
	// (spec.md §5).
	Upsert(ctx context.Context, tx Tx, ce *model.ChatEmployee) error

	Deactivate(ctx context.Context, tx Tx, chatID, employeeID int64) error

	// Delete hard-deletes the link; used only by enforcement after a
	// successful kick (spec.md §4.5 step 4).
	Delete(ctx context.Context, tx Tx, chatID, employeeID int64) error
}
