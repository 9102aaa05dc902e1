// File: internal/infra/db/postgres/bot_repo.go
package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/repository"
)

// BotRepo is a pgx-backed repository.BotRepository.
type BotRepo struct {
	pool *pgxpool.Pool
}

var _ repository.BotRepository = (*BotRepo)(nil)

func NewBotRepo(pool *pgxpool.Pool) *BotRepo {
	return &BotRepo{pool: pool}
}

func (r *BotRepo) ActiveByOwner(ctx context.Context, tx repository.Tx, ownerID int64) ([]*model.Bot, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT bot_id, user_id, bot_token, telegram_user_id, bot_name, is_active
		 FROM bots WHERE user_id = $1 AND is_active = true`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Bot
	for rows.Next() {
		b := &model.Bot{}
		if err := rows.Scan(&b.BotID, &b.UserID, &b.BotToken, &b.TelegramUserID, &b.BotName, &b.IsActive); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
