// File: internal/infra/db/postgres/chat_repo.go
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

// ChatRepo is a pgx-backed repository.ChatRepository.
type ChatRepo struct {
	pool *pgxpool.Pool
}

var _ repository.ChatRepository = (*ChatRepo)(nil)

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func scanChat(row pgx.Row) (*model.Chat, error) {
	c := &model.Chat{}
	err := row.Scan(&c.ChatID, &c.BotID, &c.UserID, &c.TelegramChatID, &c.TypeID, &c.StatusID,
		&c.Title, &c.UserNum, &c.UnknownUser, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

const chatColumns = `chat_id, bot_id, user_id, telegram_chat_id, type_id, status_id, title, user_num, unknown_user, created_at, updated_at`

func (r *ChatRepo) ByOwner(ctx context.Context, tx repository.Tx, ownerID int64) ([]*model.Chat, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT `+chatColumns+` FROM chats WHERE user_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Chat
	for rows.Next() {
		c := &model.Chat{}
		if err := rows.Scan(&c.ChatID, &c.BotID, &c.UserID, &c.TelegramChatID, &c.TypeID, &c.StatusID,
			&c.Title, &c.UserNum, &c.UnknownUser, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChatRepo) ByBotAndTelegramID(ctx context.Context, tx repository.Tx, botID, telegramChatID int64) (*model.Chat, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT `+chatColumns+` FROM chats WHERE bot_id = $1 AND telegram_chat_id = $2`, botID, telegramChatID)
	if err != nil {
		return nil, err
	}
	return scanChat(row)
}

func (r *ChatRepo) Create(ctx context.Context, tx repository.Tx, chat *model.Chat) (*model.Chat, error) {
	row, err := pickRow(ctx, r.pool, tx, `
		INSERT INTO chats (bot_id, user_id, telegram_chat_id, type_id, status_id, title, user_num, unknown_user, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (bot_id, telegram_chat_id) DO UPDATE SET updated_at = now()
		RETURNING `+chatColumns,
		chat.BotID, chat.UserID, chat.TelegramChatID, chat.TypeID, chat.StatusID, chat.Title, chat.UserNum, chat.UnknownUser)
	if err != nil {
		return nil, err
	}
	return scanChat(row)
}

func (r *ChatRepo) SetType(ctx context.Context, tx repository.Tx, chatID, ownerID int64, typeID model.ChatType) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE chats SET type_id = $1, updated_at = now() WHERE chat_id = $2 AND user_id = $3`,
		typeID, chatID, ownerID)
	return err
}

func (r *ChatRepo) SetStatus(ctx context.Context, tx repository.Tx, chatID, ownerID int64, statusID model.ChatStatus) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE chats SET status_id = $1, updated_at = now() WHERE chat_id = $2 AND user_id = $3`,
		statusID, chatID, ownerID)
	return err
}

func (r *ChatRepo) SetTypeAndStatus(ctx context.Context, tx repository.Tx, chatID, ownerID int64, typeID model.ChatType, statusID model.ChatStatus) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE chats SET type_id = $1, status_id = $2, updated_at = now() WHERE chat_id = $3 AND user_id = $4`,
		typeID, statusID, chatID, ownerID)
	return err
}

func (r *ChatRepo) UpdateTitle(ctx context.Context, tx repository.Tx, chatID, ownerID int64, title []string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE chats SET title = $1, updated_at = now() WHERE chat_id = $2 AND user_id = $3`,
		title, chatID, ownerID)
	return err
}

func (r *ChatRepo) UpdateCounts(ctx context.Context, tx repository.Tx, chatID, ownerID int64, userNum, unknownUser int) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE chats SET user_num = $1, unknown_user = $2, updated_at = now() WHERE chat_id = $3 AND user_id = $4`,
		userNum, unknownUser, chatID, ownerID)
	return err
}
