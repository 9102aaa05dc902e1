// File: internal/domain/ports/repository/chat.go
package repository

import (
	"context"

	"chatwarden/internal/domain/model"
)

// ChatRepository exposes owner-scoped reads and the narrow mutators the
// engine needs. All mutators are idempotent on the natural key
// (bot_id, telegram_chat_id) and stamp updated_at themselves.
type ChatRepository interface {
	ByOwner(ctx context.Context, tx Tx, ownerID int64) ([]*model.Chat, error)
	ByBotAndTelegramID(ctx context.Context, tx Tx, botID, telegramChatID int64) (*model.Chat, error)

	// Create inserts chat with the type, status, title and counts it carries
	// (the engine passes type_id=4, status_id=1, counts at 0). If a row for
	// (bot_id, telegram_chat_id) already exists, that row is returned and
	// only its updated_at changes.
	Create(ctx context.Context, tx Tx, chat *model.Chat) (*model.Chat, error)

	// SetType updates type_id for exactly the (bot_id, user_id, chat_id)
	// triple — never for sibling chats sharing the same telegram_chat_id
	// under a different bot (spec.md §7, §9).
	SetType(ctx context.Context, tx Tx, chatID, ownerID int64, typeID model.ChatType) error

	SetStatus(ctx context.Context, tx Tx, chatID, ownerID int64, statusID model.ChatStatus) error

	SetTypeAndStatus(ctx context.Context, tx Tx, chatID, ownerID int64, typeID model.ChatType, statusID model.ChatStatus) error

	UpdateTitle(ctx context.Context, tx Tx, chatID, ownerID int64, title []string) error

	UpdateCounts(ctx context.Context, tx Tx, chatID, ownerID int64, userNum, unknownUser int) error
}
