// File: internal/infra/db/postgres/owner_repo.go
package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/repository"
)

// OwnerRepo is a pgx-backed repository.OwnerRepository.
type OwnerRepo struct {
	pool *pgxpool.Pool
}

var _ repository.OwnerRepository = (*OwnerRepo)(nil)

func NewOwnerRepo(pool *pgxpool.Pool) *OwnerRepo {
	return &OwnerRepo{pool: pool}
}

func (r *OwnerRepo) ActiveOwners(ctx context.Context, tx repository.Tx) ([]*model.Owner, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT user_id, login, is_active, is_admin FROM users WHERE is_active = true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Owner
	for rows.Next() {
		o := &model.Owner{}
		if err := rows.Scan(&o.UserID, &o.Login, &o.IsActive, &o.IsAdmin); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
