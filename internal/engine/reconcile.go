// File: internal/engine/reconcile.go
package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"chatwarden/internal/domain/identity"
	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/policy"
	"chatwarden/internal/domain/ports/remote"
	"chatwarden/internal/domain/ports/repository"
	"chatwarden/internal/infra/metrics"
)

// createChat implements first-time chat creation (spec.md §4.5): insert with
// type_id=4, status_id=1, zero counts; if the bot is itself a member,
// register it as an is_bot employee and link it; send the welcome message
// once, best-effort.
func (e *Engine) createChat(ctx context.Context, log *zerolog.Logger, owner *model.Owner, bot *model.Bot, client remote.Client, telegramChatID int64, title string) (*model.Chat, error) {
	botMember, botPresent, err := lookupBotMember(ctx, client, telegramChatID, bot.TelegramUserID)
	if err != nil {
		log.Warn().Err(err).Msg("getChatMember for bot failed during chat creation")
	}

	var chat *model.Chat
	err = e.Tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		c := &model.Chat{
			BotID:          bot.BotID,
			UserID:         owner.UserID,
			TelegramChatID: telegramChatID,
			TypeID:         model.ChatTypeNew,
			StatusID:       model.ChatStatusOK,
		}
		if title != "" {
			c.Title = []string{title}
		}
		created, err := e.Chats.Create(ctx, tx, c)
		if err != nil {
			return err
		}
		chat = created

		if !botPresent {
			return nil
		}
		botEmployee, err := e.Employees.ByTelegramUserID(ctx, tx, owner.UserID, bot.TelegramUserID)
		if err != nil {
			id := bot.TelegramUserID
			botEmployee = &model.Employee{
				UserID:         owner.UserID,
				TelegramUserID: &id,
				FullName:       botMember.User.FullName(),
				IsActive:       true,
				IsExternal:     false,
				IsBot:          true,
			}
			if botMember.User.Username != "" {
				u := botMember.User.Username
				botEmployee.TelegramUsername = &u
			}
			botEmployee, err = e.Employees.Create(ctx, tx, botEmployee)
			if err != nil {
				return err
			}
		}
		return e.Links.Upsert(ctx, tx, &model.ChatEmployee{
			ChatID:     chat.ChatID,
			EmployeeID: botEmployee.EmployeeID,
			UserID:     owner.UserID,
			IsActive:   true,
			IsAdmin:    botMember.IsAdmin,
		})
	})
	if err != nil {
		metrics.IncError("integrity")
		return nil, err
	}

	if e.Cfg.WelcomeMessage != "" {
		if _, err := client.SendMessage(ctx, telegramChatID, e.Cfg.WelcomeMessage); err != nil {
			log.Warn().Err(err).Int64("telegram_chat_id", telegramChatID).Msg("welcome message delivery failed, not retried")
		}
	}
	return chat, nil
}

func lookupBotMember(ctx context.Context, client remote.Client, telegramChatID, botTelegramID int64) (remote.Member, bool, error) {
	member, status, err := client.GetChatMember(ctx, telegramChatID, botTelegramID)
	if status != remote.StatusOK {
		return remote.Member{}, false, err
	}
	return member, true, nil
}

// reconcileChat runs the per-chat procedure of spec.md §4.5. events is the
// full batch drained for this bot this cycle; cutoff is the look-back
// horizon already applied to the chat-discovery pass.
func (e *Engine) reconcileChat(ctx context.Context, log *zerolog.Logger, client remote.Client, owner *model.Owner, bot *model.Bot, chat *model.Chat, events []model.UpdateEvent, cutoff time.Time) {
	chatLog := log.With().Int64("chat_id", chat.ChatID).Int64("telegram_chat_id", chat.TelegramChatID).Logger()
	metrics.IncChatProcessed(strconv.Itoa(int(chat.TypeID)))

	if chat.TypeID == model.ChatTypeBlocked {
		return
	}

	if chat.TypeID == model.ChatTypeRemoved {
		_, status, err := client.GetChat(ctx, chat.TelegramChatID)
		switch status {
		case remote.StatusOK:
			if err := e.Chats.SetType(ctx, nil, chat.ChatID, owner.UserID, model.ChatTypeNew); err != nil {
				chatLog.Error().Err(err).Msg("revive chat")
				return
			}
			chat.TypeID = model.ChatTypeNew
		default:
			return // still inaccessible, or a transient failure; retried next cycle
		}
	}

	rule := policy.For(chat.TypeID)
	if rule.Skip {
		return
	}

	// Step 1: confirm access, detect loss.
	info, status, err := client.GetChat(ctx, chat.TelegramChatID)
	switch status {
	case remote.StatusNotFound400:
		e.markAccessLost(ctx, &chatLog, chat, owner, false)
		return
	case remote.StatusForbidden403:
		e.markAccessLost(ctx, &chatLog, chat, owner, true)
		return
	case remote.StatusTransportError:
		chatLog.Warn().Err(err).Msg("getChat transport error")
		metrics.IncError("transient")
		return
	}
	if chat.PushTitle(info.Title) {
		if err := e.Chats.UpdateTitle(ctx, nil, chat.ChatID, owner.UserID, chat.Title); err != nil {
			chatLog.Error().Err(err).Msg("update chat title")
		}
	}

	// Step 2: admin list, bot's own status.
	admins, status, err := client.GetChatAdministrators(ctx, chat.TelegramChatID)
	if status == remote.StatusForbidden403 {
		e.markAccessLost(ctx, &chatLog, chat, owner, true)
		return
	}
	if status == remote.StatusTransportError {
		chatLog.Warn().Err(err).Msg("getChatAdministrators transport error")
		metrics.IncError("transient")
		return
	}
	botIsAdmin := false
	for _, a := range admins {
		if a.User.ID == bot.TelegramUserID {
			botIsAdmin = true
			break
		}
	}
	newStatus := model.ChatStatusOK
	if !botIsAdmin {
		newStatus = model.ChatStatusNotAdmin
		metrics.IncError("not_admin")
	}
	if newStatus != chat.StatusID {
		if err := e.Chats.SetStatus(ctx, nil, chat.ChatID, owner.UserID, newStatus); err != nil {
			chatLog.Error().Err(err).Msg("update chat status")
		}
		chat.StatusID = newStatus
	}

	lookup := e.identityLookup(ctx, owner.UserID)

	// Step 3: ingest admins.
	for _, a := range admins {
		e.upsertLink(ctx, &chatLog, owner, chat, lookup, a.User, true)
	}

	// Step 4: walk existing links.
	links, err := e.Links.ByChat(ctx, nil, chat.ChatID)
	if err != nil {
		chatLog.Error().Err(err).Msg("load chat links")
		return
	}
	knownActive := 0
	for _, link := range links {
		emp, err := e.employeeByID(ctx, owner.UserID, link.EmployeeID)
		if err != nil {
			metrics.IncError("integrity")
			continue
		}
		member, mStatus, mErr := client.GetChatMember(ctx, chat.TelegramChatID, employeeTelegramID(emp))
		present := mStatus == remote.StatusOK
		if present {
			knownActive++
		}
		inactive := !link.IsActive || !emp.IsActive
		if policy.ShouldKick(rule, inactive, emp.IsBot, emp.IsExternal) {
			e.enforceKick(ctx, &chatLog, client, chat, owner, emp, link)
			continue
		}
		if inactive {
			if link.IsActive {
				_ = e.Links.Deactivate(ctx, nil, chat.ChatID, emp.EmployeeID)
			}
			continue
		}
		if present && member.User.Username != "" {
			u := member.User.Username
			if emp.TelegramUsername == nil || *emp.TelegramUsername != u {
				emp.TelegramUsername = &u
				_ = e.Employees.Update(ctx, nil, emp)
			}
		}
		if mStatus == remote.StatusTransportError {
			chatLog.Warn().Err(mErr).Int64("employee_id", emp.EmployeeID).Msg("getChatMember transport error")
			metrics.IncError("transient")
		}
	}

	// Step 5: probe unlinked active employees.
	unlinked, err := e.unlinkedEmployees(ctx, owner.UserID, links)
	if err != nil {
		chatLog.Error().Err(err).Msg("load unlinked employees")
	}
	for _, emp := range unlinked {
		if emp.TelegramUserID != nil {
			member, mStatus, _ := client.GetChatMember(ctx, chat.TelegramChatID, *emp.TelegramUserID)
			if mStatus == remote.StatusOK {
				if member.User.Username != "" {
					u := member.User.Username
					emp.TelegramUsername = &u
					_ = e.Employees.Update(ctx, nil, emp)
				}
				_ = e.Links.Upsert(ctx, nil, &model.ChatEmployee{ChatID: chat.ChatID, EmployeeID: emp.EmployeeID, UserID: owner.UserID, IsActive: true})
				knownActive++
			}
			continue
		}
		if emp.TelegramUsername != nil {
			for _, a := range admins {
				if emp.MatchesUsername(a.User.Username) {
					_ = e.Links.Upsert(ctx, nil, &model.ChatEmployee{ChatID: chat.ChatID, EmployeeID: emp.EmployeeID, UserID: owner.UserID, IsActive: true, IsAdmin: a.IsAdmin})
					knownActive++
					break
				}
			}
		}
		// neither identifier present: skipped per spec.md §4.5 step 5.
	}

	// Step 6: reconcile counts.
	count, status, err := client.GetChatMembersCount(ctx, chat.TelegramChatID)
	if status == remote.StatusOK {
		unknown := count - knownActive
		if unknown < 0 {
			unknown = 0
		}
		if count != chat.UserNum || unknown != chat.UnknownUser {
			if err := e.Chats.UpdateCounts(ctx, nil, chat.ChatID, owner.UserID, count, unknown); err != nil {
				chatLog.Error().Err(err).Msg("update chat counts")
			}
		}
	} else if status == remote.StatusTransportError {
		chatLog.Warn().Err(err).Msg("getChatMembersCount transport error")
		metrics.IncError("transient")
	}

	// Step 7: drain updates relevant to this chat.
	for _, ev := range events {
		if ev.TelegramChatID != chat.TelegramChatID || ev.Date.Before(cutoff) {
			continue
		}
		e.applyUpdateEvent(ctx, &chatLog, owner, chat, lookup, ev)
	}
}

// markAccessLost marks a chat type_id=5 for the exact (bot_id, user_id,
// chat_id) triple. Per spec.md §7, a 403 additionally sets status_id=3; a
// 400 on getChat leaves status_id untouched.
func (e *Engine) markAccessLost(ctx context.Context, log *zerolog.Logger, chat *model.Chat, owner *model.Owner, forbidden bool) {
	var err error
	if forbidden {
		err = e.Chats.SetTypeAndStatus(ctx, nil, chat.ChatID, owner.UserID, model.ChatTypeRemoved, model.ChatStatusNoAccess)
	} else {
		err = e.Chats.SetType(ctx, nil, chat.ChatID, owner.UserID, model.ChatTypeRemoved)
	}
	if err != nil {
		log.Error().Err(err).Msg("mark access lost")
		return
	}
	metrics.IncError("access_lost")
	if forbidden {
		log.Warn().Msg("access forbidden (403), chat marked removed")
	} else {
		log.Warn().Msg("chat not found (400), marked removed")
	}
}

func (e *Engine) upsertLink(ctx context.Context, log *zerolog.Logger, owner *model.Owner, chat *model.Chat, lookup identity.Lookup, remoteUser model.RemoteUser, isAdmin bool) {
	outcome := identity.Resolve(owner.UserID, remoteUser, lookup)
	emp, err := e.persistOutcome(ctx, owner.UserID, outcome)
	if err != nil {
		log.Error().Err(err).Msg("persist resolved identity")
		metrics.IncError("integrity")
		return
	}
	if err := e.Links.Upsert(ctx, nil, &model.ChatEmployee{
		ChatID:     chat.ChatID,
		EmployeeID: emp.EmployeeID,
		UserID:     owner.UserID,
		IsActive:   true,
		IsAdmin:    isAdmin,
	}); err != nil {
		log.Error().Err(err).Msg("upsert admin link")
		metrics.IncError("integrity")
	}
}

func (e *Engine) applyUpdateEvent(ctx context.Context, log *zerolog.Logger, owner *model.Owner, chat *model.Chat, lookup identity.Lookup, ev model.UpdateEvent) {
	switch ev.Kind {
	case model.EventUserJoined:
		e.upsertLink(ctx, log, owner, chat, lookup, ev.User, false)
	case model.EventUserLeft:
		outcome := identity.Resolve(owner.UserID, ev.User, lookup)
		emp, err := e.persistOutcome(ctx, owner.UserID, outcome)
		if err != nil {
			log.Error().Err(err).Msg("resolve departing user")
			return
		}
		_ = e.Links.Deactivate(ctx, nil, chat.ChatID, emp.EmployeeID)
	case model.EventBotStatusChanged:
		// The bot's own membership state is re-derived every cycle from
		// getChatAdministrators / getChat (steps 1-2); nothing to persist.
	case model.EventMessageFrom:
		e.upsertLink(ctx, log, owner, chat, lookup, ev.User, false)
	}
}

func (e *Engine) enforceKick(ctx context.Context, log *zerolog.Logger, client remote.Client, chat *model.Chat, owner *model.Owner, emp *model.Employee, link *model.ChatEmployee) {
	status, err := client.KickChatMember(ctx, chat.TelegramChatID, employeeTelegramID(emp))
	switch status {
	case remote.StatusOK:
		metrics.IncKick("kicked")
		if err := e.Links.Delete(ctx, nil, chat.ChatID, emp.EmployeeID); err != nil {
			log.Error().Err(err).Msg("delete enforced link")
		}
		if e.Cfg.KickNoticeTemplate != "" {
			text := fmt.Sprintf(e.Cfg.KickNoticeTemplate, emp.FullName)
			if _, err := client.SendMessage(ctx, chat.TelegramChatID, text); err != nil {
				log.Warn().Err(err).Msg("kick notice delivery failed")
			}
		}
	default:
		metrics.IncKick("failed")
		metrics.IncError("kick_failed")
		log.Warn().Err(err).Int64("employee_id", emp.EmployeeID).Msg("kick failed, link left inactive for retry")
		if link.IsActive {
			_ = e.Links.Deactivate(ctx, nil, chat.ChatID, emp.EmployeeID)
		}
	}
}

func employeeTelegramID(e *model.Employee) int64 {
	if e.TelegramUserID == nil {
		return 0
	}
	return *e.TelegramUserID
}
