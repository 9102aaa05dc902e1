// File: internal/domain/ports/remote/remote.go
package remote

import (
	"context"

	"chatwarden/internal/domain/model"
)

// Status classifies the outcome of a remote call the way the engine needs
// to branch on it: a clean result, a permanent access problem, or something
// that should be retried next cycle.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound400
	StatusForbidden403
	StatusTransportError
)

// ChatInfo is the subset of Telegram's getChat payload the engine consults.
type ChatInfo struct {
	Title string
}

// Member is one row of getChatAdministrators / getChatMember.
type Member struct {
	User    model.RemoteUser
	IsAdmin bool
}

// Client is the per-bot Telegram Bot API surface the engine drives. Every
// method returns a Status alongside (or instead of) an error so callers
// never have to parse HTTP codes out of an error string.
type Client interface {
	GetChat(ctx context.Context, telegramChatID int64) (ChatInfo, Status, error)
	GetChatAdministrators(ctx context.Context, telegramChatID int64) ([]Member, Status, error)
	GetChatMember(ctx context.Context, telegramChatID, telegramUserID int64) (Member, Status, error)
	GetChatMembersCount(ctx context.Context, telegramChatID int64) (int, Status, error)

	// GetUpdates drains pending updates starting after offset and returns
	// the decoded events plus the next offset to pass on the following
	// call. When bootstrap is true (the first poll for this bot since
	// process start) the implementation must poll without an offset
	// and the caller discards the returned events, keeping only the cursor
	// (spec.md §4.3).
	GetUpdates(ctx context.Context, offset int, bootstrap bool) ([]model.UpdateEvent, int, Status, error)

	SendMessage(ctx context.Context, telegramChatID int64, text string) (Status, error)

	KickChatMember(ctx context.Context, telegramChatID, telegramUserID int64) (Status, error)
}

// Factory builds a Client bound to one bot's token. Separate bots never
// share a Client so rate limits and update offsets stay isolated.
type Factory func(botToken string) Client
