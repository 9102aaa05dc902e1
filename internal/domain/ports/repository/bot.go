// File: internal/domain/ports/repository/bot.go
package repository

import (
	"context"

	"chatwarden/internal/domain/model"
)

// BotRepository reads bot credentials scoped to one owner.
type BotRepository interface {
	ActiveByOwner(ctx context.Context, tx Tx, ownerID int64) ([]*model.Bot, error)
}
