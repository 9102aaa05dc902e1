// File: internal/domain/identity/resolver.go
package identity

import (
	"chatwarden/internal/domain/model"
)

// Lookup is the narrow read surface the resolver needs; callers pass closures
// bound to the store for one owner so this package stays free of store
// dependencies (spec.md §4.4, §9 — the matching policy must not be
// duplicated in enforcement code). ByTelegramUsername must compare
// case-insensitively (see model.Employee.MatchesUsername).
type Lookup struct {
	ByTelegramUserID   func(telegramUserID int64) (*model.Employee, bool)
	ByTelegramUsername func(username string) (*model.Employee, bool)
}

// Outcome is what the caller must persist: either a brand new employee, or
// an existing one with a patch of fields to write and a collision victim to
// deactivate alongside it.
type Outcome struct {
	Employee    *model.Employee
	IsNew       bool
	Collision   *model.Employee // non-nil: this record must be saved with IsActive=false too
}

// Resolve implements the three-step match: by telegram_user_id, then by
// case-insensitive telegram_username, then create. It never sets
// employee.IsBot; bot employees are registered explicitly by the engine.
func Resolve(ownerID int64, remote model.RemoteUser, lookup Lookup) Outcome {
	if e, ok := lookup.ByTelegramUserID(remote.ID); ok {
		if remote.Username != "" && (e.TelegramUsername == nil || *e.TelegramUsername != remote.Username) {
			u := remote.Username
			e.TelegramUsername = &u
		}
		if fullName := remote.FullName(); fullName != "" && e.FullName != fullName {
			e.FullName = fullName
		}
		e.IsActive = true
		return Outcome{Employee: e}
	}

	if remote.Username != "" {
		if e, ok := lookup.ByTelegramUsername(remote.Username); ok {
			if e.TelegramUserID == nil {
				id := remote.ID
				e.TelegramUserID = &id
				if fullName := remote.FullName(); fullName != "" {
					e.FullName = fullName
				}
				e.IsActive = true
				return Outcome{Employee: e}
			}
			if *e.TelegramUserID != remote.ID {
				// Collision: the username is already bound to a different
				// telegram_user_id. Keep both records; deactivate the
				// username-only match and fall through to create/find the
				// new identity under its own telegram_user_id.
				if fullName := remote.FullName(); fullName != "" {
					e.FullName = fullName
				}
				e.IsActive = false
				collision := e
				return resolveAfterCollision(ownerID, remote, lookup, collision)
			}
		}
	}

	return Outcome{IsNew: true, Employee: newEmployee(ownerID, remote)}
}

func resolveAfterCollision(ownerID int64, remote model.RemoteUser, lookup Lookup, collision *model.Employee) Outcome {
	if e, ok := lookup.ByTelegramUserID(remote.ID); ok {
		return Outcome{Employee: e, Collision: collision}
	}
	return Outcome{IsNew: true, Employee: newEmployee(ownerID, remote), Collision: collision}
}

func newEmployee(ownerID int64, remote model.RemoteUser) *model.Employee {
	id := remote.ID
	e := &model.Employee{
		UserID:         ownerID,
		TelegramUserID: &id,
		FullName:       remote.FullName(),
		IsActive:       true,
		IsExternal:     true,
		IsBot:          false,
	}
	if remote.Username != "" {
		u := remote.Username
		e.TelegramUsername = &u
	}
	return e
}
