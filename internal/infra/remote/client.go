// File: internal/infra/remote/client.go
package remote

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/remote"
)

// TelegramClient is a thin, stateless wrapper over the Telegram Bot HTTP API
// via tgbotapi, implementing remote.Client (spec.md §4.2). Every method
// translates tgbotapi's error shape into the engine's {OK, NotFound400,
// Forbidden403, TransportError} status contract so the engine never parses
// HTTP codes itself.
type TelegramClient struct {
	bot *tgbotapi.BotAPI
}

var _ remote.Client = (*TelegramClient)(nil)

// NewFactory returns a remote.Factory that builds one TelegramClient per
// bot token. Construction failures (malformed token, DNS) surface as a
// client whose every call reports TransportError, rather than panicking at
// wiring time — a single bad credential must not take down the cycle for
// every other bot.
func NewFactory() remote.Factory {
	return func(token string) remote.Client {
		bot, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			return &brokenClient{err: err}
		}
		return &TelegramClient{bot: bot}
	}
}

func classify(err error) remote.Status {
	if err == nil {
		return remote.StatusOK
	}
	if apiErr, ok := err.(*tgbotapi.Error); ok {
		switch apiErr.Code {
		case 400:
			return remote.StatusNotFound400
		case 403:
			return remote.StatusForbidden403
		}
	}
	return remote.StatusTransportError
}

func chatConfig(telegramChatID int64) tgbotapi.ChatConfig {
	return tgbotapi.ChatConfig{ChatID: telegramChatID}
}

func (c *TelegramClient) GetChat(ctx context.Context, telegramChatID int64) (remote.ChatInfo, remote.Status, error) {
	chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: chatConfig(telegramChatID)})
	if err != nil {
		return remote.ChatInfo{}, classify(err), err
	}
	return remote.ChatInfo{Title: chat.Title}, remote.StatusOK, nil
}

func (c *TelegramClient) GetChatAdministrators(ctx context.Context, telegramChatID int64) ([]remote.Member, remote.Status, error) {
	admins, err := c.bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{ChatConfig: chatConfig(telegramChatID)})
	if err != nil {
		return nil, classify(err), err
	}
	out := make([]remote.Member, 0, len(admins))
	for _, a := range admins {
		out = append(out, toMember(a))
	}
	return out, remote.StatusOK, nil
}

func (c *TelegramClient) GetChatMember(ctx context.Context, telegramChatID, telegramUserID int64) (remote.Member, remote.Status, error) {
	member, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatConfig: chatConfig(telegramChatID), UserID: telegramUserID},
	})
	if err != nil {
		return remote.Member{}, classify(err), err
	}
	return toMember(member), remote.StatusOK, nil
}

func (c *TelegramClient) GetChatMembersCount(ctx context.Context, telegramChatID int64) (int, remote.Status, error) {
	count, err := c.bot.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{ChatConfig: chatConfig(telegramChatID)})
	if err != nil {
		return 0, classify(err), err
	}
	return count, remote.StatusOK, nil
}

func (c *TelegramClient) GetUpdates(ctx context.Context, offset int, bootstrap bool) ([]model.UpdateEvent, int, remote.Status, error) {
	cfg := tgbotapi.UpdateConfig{Offset: offset, Timeout: 0}
	if bootstrap {
		// Bootstrap semantics: poll the current backlog without
		// acknowledging it, purely to discover where the stream currently
		// is (spec.md §4.3).
		cfg.Offset = 0
	}
	updates, err := c.bot.GetUpdates(cfg)
	if err != nil {
		return nil, offset, classify(err), err
	}
	next := offset
	events := make([]model.UpdateEvent, 0, len(updates))
	for _, u := range updates {
		if u.UpdateID+1 > next {
			next = u.UpdateID + 1
		}
		events = append(events, flatten(u)...)
	}
	if bootstrap {
		return nil, next, remote.StatusOK, nil
	}
	return events, next, remote.StatusOK, nil
}

func (c *TelegramClient) SendMessage(ctx context.Context, telegramChatID int64, text string) (remote.Status, error) {
	_, err := c.bot.Send(tgbotapi.NewMessage(telegramChatID, text))
	return classify(err), err
}

func (c *TelegramClient) KickChatMember(ctx context.Context, telegramChatID, telegramUserID int64) (remote.Status, error) {
	_, err := c.bot.Request(tgbotapi.KickChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: telegramChatID, UserID: telegramUserID},
	})
	status := classify(err)
	if status == remote.StatusNotFound400 && isAlreadyAbsent(err) {
		return remote.StatusOK, nil
	}
	return status, err
}

// isAlreadyAbsent matches the kickChatMember success-in-disguise case
// (spec.md §4.2, §6): Telegram returns 400 when the target already left.
func isAlreadyAbsent(err error) bool {
	apiErr, ok := err.(*tgbotapi.Error)
	if !ok {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "user_not_participant") || strings.Contains(msg, "not a member")
}

func toMember(m tgbotapi.ChatMember) remote.Member {
	return remote.Member{
		User: model.RemoteUser{
			ID:        m.User.ID,
			FirstName: m.User.FirstName,
			LastName:  m.User.LastName,
			Username:  m.User.UserName,
			IsBot:     m.User.IsBot,
		},
		IsAdmin: m.IsAdministrator() || m.IsCreator(),
	}
}

// brokenClient is returned when a bot token fails to construct a BotAPI
// (spec.md §7: a bad credential must not abort the cycle for other bots).
type brokenClient struct{ err error }

func (b *brokenClient) GetChat(context.Context, int64) (remote.ChatInfo, remote.Status, error) {
	return remote.ChatInfo{}, remote.StatusTransportError, b.err
}
func (b *brokenClient) GetChatAdministrators(context.Context, int64) ([]remote.Member, remote.Status, error) {
	return nil, remote.StatusTransportError, b.err
}
func (b *brokenClient) GetChatMember(context.Context, int64, int64) (remote.Member, remote.Status, error) {
	return remote.Member{}, remote.StatusTransportError, b.err
}
func (b *brokenClient) GetChatMembersCount(context.Context, int64) (int, remote.Status, error) {
	return 0, remote.StatusTransportError, b.err
}
func (b *brokenClient) GetUpdates(context.Context, int, bool) ([]model.UpdateEvent, int, remote.Status, error) {
	return nil, 0, remote.StatusTransportError, b.err
}
func (b *brokenClient) SendMessage(context.Context, int64, string) (remote.Status, error) {
	return remote.StatusTransportError, b.err
}
func (b *brokenClient) KickChatMember(context.Context, int64, int64) (remote.Status, error) {
	return remote.StatusTransportError, b.err
}

var _ remote.Client = (*brokenClient)(nil)
