// File: internal/domain/ports/repository/owner.go
package repository

import (
	"context"

	"chatwarden/internal/domain/model"
)

// OwnerRepository reads tenant accounts. Owner CRUD is owned by the
// out-of-scope admin REST surface; the engine only ever lists active owners.
type OwnerRepository interface {
	ActiveOwners(ctx context.Context, tx Tx) ([]*model.Owner, error)
}
