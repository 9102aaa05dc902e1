// File: internal/infra/remote/events_test.go
package remote

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chatwarden/internal/domain/model"
)

func TestFlatten_UserJoined(t *testing.T) {
	u := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat:           &tgbotapi.Chat{ID: -100, Title: "Crew"},
			Date:           1700000000,
			NewChatMembers: []tgbotapi.User{{ID: 7, FirstName: "Ann", UserName: "ann"}},
		},
	}

	events := flatten(u)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != model.EventUserJoined {
		t.Errorf("expected EventUserJoined, got %v", ev.Kind)
	}
	if ev.TelegramChatID != -100 || ev.ChatTitle != "Crew" {
		t.Errorf("chat fields not flattened: %+v", ev)
	}
	if ev.User.ID != 7 || ev.User.Username != "ann" {
		t.Errorf("user not flattened: %+v", ev.User)
	}
}

func TestFlatten_UserLeft(t *testing.T) {
	u := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat:           &tgbotapi.Chat{ID: -100, Title: "Crew"},
			Date:           1700000000,
			LeftChatMember: &tgbotapi.User{ID: 7, FirstName: "Ann"},
		},
	}

	events := flatten(u)
	if len(events) != 1 || events[0].Kind != model.EventUserLeft {
		t.Fatalf("expected one EventUserLeft, got %+v", events)
	}
}

func TestFlatten_PlainMessage(t *testing.T) {
	u := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: -100, Title: "Crew"},
			Date: 1700000000,
			From: &tgbotapi.User{ID: 55, FirstName: "Max", UserName: "max"},
			Text: "hello",
		},
	}

	events := flatten(u)
	if len(events) != 1 || events[0].Kind != model.EventMessageFrom {
		t.Fatalf("expected one EventMessageFrom, got %+v", events)
	}
	if events[0].User.ID != 55 {
		t.Errorf("sender not captured: %+v", events[0].User)
	}
}

func TestFlatten_PlainMessageWithoutFrom(t *testing.T) {
	u := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: -100, Title: "Crew"},
			Date: 1700000000,
			Text: "channel post, no sender",
		},
	}

	if events := flatten(u); events != nil {
		t.Fatalf("expected no events for a fromless message, got %+v", events)
	}
}

func TestFlatten_BotStatusChanged(t *testing.T) {
	u := tgbotapi.Update{
		MyChatMember: &tgbotapi.ChatMemberUpdated{
			Chat: tgbotapi.Chat{ID: -100, Title: "Crew"},
			From: tgbotapi.User{ID: 999, FirstName: "Admin"},
			Date: 1700000000,
			NewChatMember: tgbotapi.ChatMember{Status: "administrator"},
		},
	}

	events := flatten(u)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != model.EventBotStatusChanged {
		t.Errorf("expected EventBotStatusChanged, got %v", ev.Kind)
	}
	if !ev.NewStatus {
		t.Errorf("expected NewStatus true for administrator")
	}
}

func TestFlatten_BotKicked(t *testing.T) {
	u := tgbotapi.Update{
		MyChatMember: &tgbotapi.ChatMemberUpdated{
			Chat:          tgbotapi.Chat{ID: -100, Title: "Crew"},
			From:          tgbotapi.User{ID: 999, FirstName: "Admin"},
			Date:          1700000000,
			NewChatMember: tgbotapi.ChatMember{Status: "kicked"},
		},
	}

	events := flatten(u)
	if len(events) != 1 || events[0].NewStatus {
		t.Fatalf("expected NewStatus false for kicked, got %+v", events)
	}
}

func TestFlatten_Unrecognized(t *testing.T) {
	if events := flatten(tgbotapi.Update{}); events != nil {
		t.Fatalf("expected nil for an update with neither Message nor MyChatMember, got %+v", events)
	}
}
