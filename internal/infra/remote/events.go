// File: internal/infra/remote/events.go
package remote

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chatwarden/internal/domain/model"
)

// flatten is the single pre-processor spec.md §9 calls for: it reduces one
// raw getUpdates payload, whose message shape varies (new_chat_member vs
// new_chat_members vs my_chat_member.{old,new}_chat_member vs a plain
// message), into the engine's tagged UpdateEvent variant set. No other
// package inspects a tgbotapi.Update directly.
func flatten(u tgbotapi.Update) []model.UpdateEvent {
	switch {
	case u.Message != nil:
		return flattenMessage(u.Message)
	case u.MyChatMember != nil:
		return []model.UpdateEvent{flattenChatMemberUpdate(u.MyChatMember, model.EventBotStatusChanged)}
	default:
		return nil
	}
}

func flattenMessage(msg *tgbotapi.Message) []model.UpdateEvent {
	chatID := msg.Chat.ID
	title := msg.Chat.Title
	date := time.Unix(int64(msg.Date), 0)

	var out []model.UpdateEvent
	for _, m := range msg.NewChatMembers {
		out = append(out, model.UpdateEvent{
			Kind:           model.EventUserJoined,
			TelegramChatID: chatID,
			ChatTitle:      title,
			Date:           date,
			User:           toRemoteUser(m),
		})
	}
	if len(out) == 0 && msg.NewChatParticipant != nil {
		out = append(out, model.UpdateEvent{
			Kind:           model.EventUserJoined,
			TelegramChatID: chatID,
			ChatTitle:      title,
			Date:           date,
			User:           toRemoteUser(*msg.NewChatParticipant),
		})
	}
	if msg.LeftChatMember != nil {
		out = append(out, model.UpdateEvent{
			Kind:           model.EventUserLeft,
			TelegramChatID: chatID,
			ChatTitle:      title,
			Date:           date,
			User:           toRemoteUser(*msg.LeftChatMember),
		})
	} else if msg.LeftChatParticipant != nil {
		out = append(out, model.UpdateEvent{
			Kind:           model.EventUserLeft,
			TelegramChatID: chatID,
			ChatTitle:      title,
			Date:           date,
			User:           toRemoteUser(*msg.LeftChatParticipant),
		})
	}
	if len(out) > 0 {
		return out
	}

	// Neither a join nor a leave: a regular message, relevant only for chat
	// discovery and for surfacing the sender as a candidate employee
	// (spec.md §4.5 step 7).
	if msg.From == nil {
		return nil
	}
	return []model.UpdateEvent{{
		Kind:           model.EventMessageFrom,
		TelegramChatID: chatID,
		ChatTitle:      title,
		Date:           date,
		User:           toRemoteUser(*msg.From),
	}}
}

func flattenChatMemberUpdate(cmu *tgbotapi.ChatMemberUpdated, kind model.UpdateEventKind) model.UpdateEvent {
	return model.UpdateEvent{
		Kind:           kind,
		TelegramChatID: cmu.Chat.ID,
		ChatTitle:      cmu.Chat.Title,
		Date:           time.Unix(int64(cmu.Date), 0),
		User:           toRemoteUser(cmu.From),
		NewStatus:      isPresentStatus(cmu.NewChatMember.Status),
	}
}

func isPresentStatus(status string) bool {
	switch strings.ToLower(status) {
	case "member", "administrator", "creator", "restricted":
		return true
	default:
		return false
	}
}

func toRemoteUser(u tgbotapi.User) model.RemoteUser {
	return model.RemoteUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
		IsBot:     u.IsBot,
	}
}
