// File: internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/remote"
)

func newTestEngine(s *store, client *fakeClient, cfg Config) *Engine {
	log := zerolog.Nop()
	factory := func(string) remote.Client { return client }
	return New(
		memOwnerRepo{s}, memBotRepo{s}, memChatRepo{s}, memEmployeeRepo{s}, memLinkRepo{s}, memTxManager{},
		factory, memLocker{}, &log, cfg,
	)
}

func baseFixture() (*store, *model.Owner, *model.Bot) {
	s := newStore()
	owner := &model.Owner{UserID: 1, Login: "acme", IsActive: true}
	bot := &model.Bot{BotID: 10, UserID: 1, BotToken: "tok", TelegramUserID: 900, BotName: "acme_bot", IsActive: true}
	s.owners[owner.UserID] = owner
	s.bots[bot.BotID] = bot
	return s, owner, bot
}

func TestRunCycle_Bootstrap_NoWritesOnFirstPoll(t *testing.T) {
	s, _, _ := baseFixture()
	client := newFakeClient()
	client.updates = []model.UpdateEvent{{
		Kind: model.EventUserJoined, TelegramChatID: -555, ChatTitle: "New Group",
		Date: time.Now(), User: model.RemoteUser{ID: 42, FirstName: "Nia"},
	}}
	client.nextOffset = 7

	eng := newTestEngine(s, client, Config{Lookback: 24 * time.Hour})
	if err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(s.chats) != 0 {
		t.Errorf("bootstrap pass must not process updates: got %d chats", len(s.chats))
	}
	cur := eng.Cursors.For(10)
	offset, bootstrap := cur.Snapshot()
	if bootstrap {
		t.Errorf("cursor should no longer be in bootstrap state after one pass")
	}
	if offset != 7 {
		t.Errorf("expected cursor advanced to 7, got %d", offset)
	}
}

func TestRunCycle_NewExternalGroup_CreatesChatEmployeeLinkAndWelcomes(t *testing.T) {
	s, _, _ := baseFixture()
	client := newFakeClient()
	client.updates = []model.UpdateEvent{{
		Kind: model.EventUserJoined, TelegramChatID: -777, ChatTitle: "Partners",
		Date: time.Now(), User: model.RemoteUser{ID: 42, FirstName: "Nia", Username: "nia"},
	}}
	client.memberStatus[900] = remote.StatusNotFound400 // bot itself not a member yet at creation time
	client.admins = nil
	client.membersCount = 1

	eng := newTestEngine(s, client, Config{Lookback: 24 * time.Hour, WelcomeMessage: "welcome!"})

	cur := eng.Cursors.For(10)
	cur.Advance(0) // simulate a prior bootstrap pass already completed

	if err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(s.chats) != 1 {
		t.Fatalf("expected 1 chat created, got %d", len(s.chats))
	}
	var chat *model.Chat
	for _, c := range s.chats {
		chat = c
	}
	if chat.TelegramChatID != -777 {
		t.Errorf("wrong chat discovered: %+v", chat)
	}

	var emp *model.Employee
	for _, e := range s.employees {
		if e.TelegramUserID != nil && *e.TelegramUserID == 42 {
			emp = e
		}
	}
	if emp == nil {
		t.Fatalf("expected employee 42 to be created")
	}

	link, ok := s.links[[2]int64{chat.ChatID, emp.EmployeeID}]
	if !ok || !link.IsActive {
		t.Fatalf("expected active link between chat and employee, got %+v", link)
	}

	if len(client.sent) != 1 || client.sent[0] != "welcome!" {
		t.Errorf("expected exactly one welcome message, got %v", client.sent)
	}
}

func TestRunCycle_AdminIngestWithPreRegisteredBotEmployee(t *testing.T) {
	s, _, _ := baseFixture()
	chat := &model.Chat{ChatID: 1, BotID: 10, UserID: 1, TelegramChatID: -100, TypeID: model.ChatTypeNew, StatusID: model.ChatStatusOK}
	s.chats[1] = chat
	s.nextChatID = 1

	botTgID := int64(900)
	botEmployee := &model.Employee{EmployeeID: 1, UserID: 1, TelegramUserID: &botTgID, FullName: "acme_bot", IsActive: true, IsBot: true}
	s.employees[1] = botEmployee
	s.nextEmployeeID = 1

	client := newFakeClient()
	client.admins = []remote.Member{
		{User: model.RemoteUser{ID: 900, FirstName: "acme_bot", IsBot: true}, IsAdmin: true},
		{User: model.RemoteUser{ID: 55, FirstName: "Max", Username: "max"}, IsAdmin: true},
	}
	client.membersCount = 2

	eng := newTestEngine(s, client, Config{Lookback: 24 * time.Hour})
	eng.Cursors.For(10).Advance(0)

	if err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if chat.StatusID != model.ChatStatusOK {
		t.Errorf("bot is an admin, status should stay OK, got %v", chat.StatusID)
	}

	var maxEmp *model.Employee
	for _, e := range s.employees {
		if e.TelegramUserID != nil && *e.TelegramUserID == 55 {
			maxEmp = e
		}
	}
	if maxEmp == nil {
		t.Fatalf("expected admin Max to be ingested as an employee")
	}
	link := s.links[[2]int64{1, maxEmp.EmployeeID}]
	if link == nil || !link.IsAdmin {
		t.Errorf("expected Max's link to be flagged admin, got %+v", link)
	}
}

func TestRunCycle_InternalPolicyKicksExternalEmployee(t *testing.T) {
	s, _, _ := baseFixture()
	chat := &model.Chat{ChatID: 1, BotID: 10, UserID: 1, TelegramChatID: -100, TypeID: model.ChatTypeInternal, StatusID: model.ChatStatusOK}
	s.chats[1] = chat
	s.nextChatID = 1

	extTgID := int64(77)
	ext := &model.Employee{EmployeeID: 1, UserID: 1, TelegramUserID: &extTgID, FullName: "Outside Vendor", IsActive: true, IsExternal: true}
	s.employees[1] = ext
	s.nextEmployeeID = 1
	s.links[[2]int64{1, 1}] = &model.ChatEmployee{ChatID: 1, EmployeeID: 1, UserID: 1, IsActive: true}

	client := newFakeClient()
	client.admins = nil
	client.members[77] = remote.Member{User: model.RemoteUser{ID: 77, FirstName: "Outside Vendor"}}
	client.membersCount = 1

	eng := newTestEngine(s, client, Config{Lookback: 24 * time.Hour, KickNoticeTemplate: "%s was removed"})
	eng.Cursors.For(10).Advance(0)

	if err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(client.kicked) != 1 || client.kicked[0] != 77 {
		t.Fatalf("expected employee 77 kicked, got %v", client.kicked)
	}
	if _, stillLinked := s.links[[2]int64{1, 1}]; stillLinked {
		t.Errorf("expected link hard-deleted after enforced kick")
	}
	if len(client.sent) != 1 || client.sent[0] != "Outside Vendor was removed" {
		t.Errorf("expected kick notice sent, got %v", client.sent)
	}
}

func TestRunCycle_AccessLostThenRevived(t *testing.T) {
	s, _, _ := baseFixture()
	chat := &model.Chat{ChatID: 1, BotID: 10, UserID: 1, TelegramChatID: -100, TypeID: model.ChatTypeExternal, StatusID: model.ChatStatusOK}
	s.chats[1] = chat
	s.nextChatID = 1

	client := newFakeClient()
	client.chatStatus = remote.StatusForbidden403

	eng := newTestEngine(s, client, Config{Lookback: 24 * time.Hour})
	eng.Cursors.For(10).Advance(0)

	if err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if chat.TypeID != model.ChatTypeRemoved || chat.StatusID != model.ChatStatusNoAccess {
		t.Fatalf("expected chat marked removed/no-access, got type=%v status=%v", chat.TypeID, chat.StatusID)
	}

	// Access restored: next cycle's getChat succeeds again.
	client.chatStatus = remote.StatusOK
	client.membersCount = 0
	if err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle (revival): %v", err)
	}
	if chat.TypeID != model.ChatTypeNew {
		t.Fatalf("expected chat revived to type=new, got %v", chat.TypeID)
	}
}
