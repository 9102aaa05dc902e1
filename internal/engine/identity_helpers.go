// File: internal/engine/identity_helpers.go
package engine

import (
	"context"

	"chatwarden/internal/domain/identity"
	"chatwarden/internal/domain/model"
)

// identityLookup binds identity.Resolve's read closures to the store for
// one owner. Unexpected (non-not-found) errors are treated as a miss; the
// resolver then falls through to create, and the underlying error surfaces
// again on the write and gets logged there.
func (e *Engine) identityLookup(ctx context.Context, ownerID int64) identity.Lookup {
	return identity.Lookup{
		ByTelegramUserID: func(telegramUserID int64) (*model.Employee, bool) {
			emp, err := e.Employees.ByTelegramUserID(ctx, nil, ownerID, telegramUserID)
			if err != nil {
				return nil, false
			}
			return emp, true
		},
		ByTelegramUsername: func(username string) (*model.Employee, bool) {
			emp, err := e.Employees.ByTelegramUsername(ctx, nil, ownerID, username)
			if err != nil {
				return nil, false
			}
			return emp, true
		},
	}
}

// persistOutcome writes an identity.Outcome back to the store: creates a
// new employee, or saves field updates (and a collision victim, if any) on
// existing ones.
func (e *Engine) persistOutcome(ctx context.Context, ownerID int64, outcome identity.Outcome) (*model.Employee, error) {
	if outcome.Collision != nil {
		if err := e.Employees.Update(ctx, nil, outcome.Collision); err != nil {
			return nil, err
		}
	}
	if outcome.IsNew {
		return e.Employees.Create(ctx, nil, outcome.Employee)
	}
	if err := e.Employees.Update(ctx, nil, outcome.Employee); err != nil {
		return nil, err
	}
	return outcome.Employee, nil
}

func (e *Engine) employeeByID(ctx context.Context, ownerID, employeeID int64) (*model.Employee, error) {
	return e.Employees.ByID(ctx, nil, ownerID, employeeID)
}

// unlinkedEmployees returns every active employee in the owner's scope that
// has no row in links (spec.md §4.5 step 5).
func (e *Engine) unlinkedEmployees(ctx context.Context, ownerID int64, links []*model.ChatEmployee) ([]*model.Employee, error) {
	all, err := e.Employees.ActiveByOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, err
	}
	linked := make(map[int64]struct{}, len(links))
	for _, l := range links {
		linked[l.EmployeeID] = struct{}{}
	}
	out := make([]*model.Employee, 0, len(all))
	for _, emp := range all {
		if _, ok := linked[emp.EmployeeID]; !ok {
			out = append(out, emp)
		}
	}
	return out, nil
}
