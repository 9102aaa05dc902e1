// File: internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/lock"
	"chatwarden/internal/domain/ports/remote"
	"chatwarden/internal/domain/ports/repository"
	"chatwarden/internal/infra/metrics"
	"chatwarden/internal/infra/worker"
)

// Config carries the engine's tunables, sourced from configuration (spec.md
// §6: SERVICE_INTERVAL, UPDATES_LOOKBACK_HOURS, plus the welcome/kick
// message templates the original service hard-codes).
type Config struct {
	Lookback           time.Duration
	WelcomeMessage     string
	KickNoticeTemplate string // %s is substituted with the employee's display name

	// Concurrency bounds how many owner passes run at once, and within one
	// owner how many bot passes run at once. 1 (the default) is fully
	// sequential, matching spec.md §5's baseline; a value > 1 fans owners
	// out through errgroup and bots through internal/infra/worker.Pool
	// (§11.1).
	Concurrency int
}

// Engine is the reconciliation engine (spec.md §2 component 6, §4.5). One
// RunCycle call is one full sweep of every active owner, bot and chat.
type Engine struct {
	Owners    repository.OwnerRepository
	Bots      repository.BotRepository
	Chats     repository.ChatRepository
	Employees repository.EmployeeRepository
	Links     repository.ChatEmployeeRepository
	Tx        repository.TransactionManager

	RemoteFactory remote.Factory
	Cursors       *Cursors
	Locks         lock.Locker

	Log *zerolog.Logger
	Cfg Config
}

// New wires an Engine from its dependencies, with a fresh Cursors map.
// locker may be redis.NoopLocker{} for
// single-replica deployments (SPEC_FULL.md §11).
func New(
	owners repository.OwnerRepository,
	bots repository.BotRepository,
	chats repository.ChatRepository,
	employees repository.EmployeeRepository,
	links repository.ChatEmployeeRepository,
	tx repository.TransactionManager,
	factory remote.Factory,
	locker lock.Locker,
	log *zerolog.Logger,
	cfg Config,
) *Engine {
	return &Engine{
		Owners:        owners,
		Bots:          bots,
		Chats:         chats,
		Employees:     employees,
		Links:         links,
		Tx:            tx,
		RemoteFactory: factory,
		Cursors:       NewCursors(),
		Locks:         locker,
		Log:           log,
		Cfg:           cfg,
	}
}

// lockTTL bounds how long a bot-level cycle-leadership lock is held before
// it expires on its own, in case a holder crashes mid-pass.
const lockTTL = 5 * time.Minute

// RunCycle performs exactly one sweep: active owners -> active bots ->
// (stored chats ∪ chats discovered via updates). It never returns early on
// a per-entity error; only a failure to load the active-owner set aborts
// the cycle (spec.md §7: "nothing is fatal to the process except DB pool
// initialisation failure").
func (e *Engine) RunCycle(ctx context.Context) error {
	cycleID := uuid.NewString()
	cycleLog := e.Log.With().Str("cycle_id", cycleID).Logger()
	metrics.IncCycle()

	owners, err := e.Owners.ActiveOwners(ctx, nil)
	if err != nil {
		cycleLog.Error().Err(err).Msg("load active owners")
		return err
	}

	if e.Cfg.Concurrency <= 1 {
		for _, owner := range owners {
			e.reconcileOwner(ctx, &cycleLog, owner)
		}
		return nil
	}

	// Optional intra-cycle concurrency (spec.md §5: "an implementation may
	// run per-owner or per-bot passes concurrently"). errgroup bounds the
	// fan-out and joins it; a per-owner error never aborts the cycle, since
	// reconcileOwner logs its own errors and the goroutine always returns nil.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Cfg.Concurrency)
	for _, owner := range owners {
		owner := owner
		g.Go(func() error {
			e.reconcileOwner(gctx, &cycleLog, owner)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) reconcileOwner(ctx context.Context, log *zerolog.Logger, owner *model.Owner) {
	ownerLog := log.With().Int64("owner_id", owner.UserID).Logger()

	bots, err := e.Bots.ActiveByOwner(ctx, nil, owner.UserID)
	if err != nil {
		ownerLog.Error().Err(err).Msg("load active bots")
		return
	}

	if e.Cfg.Concurrency <= 1 || len(bots) <= 1 {
		for _, bot := range bots {
			e.reconcileBot(ctx, &ownerLog, owner, bot)
		}
		return
	}

	pool := worker.NewPool(e.Cfg.Concurrency)
	pool.Start(ctx)
	for _, bot := range bots {
		bot := bot
		if err := pool.Submit(func(taskCtx context.Context) error {
			e.reconcileBot(taskCtx, &ownerLog, owner, bot)
			return nil
		}); err != nil {
			ownerLog.Warn().Err(err).Int64("bot_id", bot.BotID).Msg("submit bot pass, running inline")
			e.reconcileBot(ctx, &ownerLog, owner, bot)
		}
	}
	pool.Stop()
}

func (e *Engine) reconcileBot(ctx context.Context, log *zerolog.Logger, owner *model.Owner, bot *model.Bot) {
	botLog := log.With().Int64("bot_id", bot.BotID).Logger()

	lockKey := fmt.Sprintf("lock:bot:%d", bot.BotID)
	token, ok, err := e.Locks.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		botLog.Error().Err(err).Msg("acquire bot lock")
		return
	}
	if !ok {
		botLog.Debug().Msg("bot owned by another pass this cycle, skipping")
		return
	}
	defer func() {
		if err := e.Locks.Unlock(ctx, lockKey, token); err != nil {
			botLog.Warn().Err(err).Msg("release bot lock")
		}
	}()

	client := e.RemoteFactory(bot.BotToken)

	stored, err := e.Chats.ByOwner(ctx, nil, owner.UserID)
	if err != nil {
		botLog.Error().Err(err).Msg("load stored chats")
		return
	}

	byTelegramID := make(map[int64]*model.Chat, len(stored))
	for _, c := range stored {
		if c.BotID == bot.BotID {
			byTelegramID[c.TelegramChatID] = c
		}
	}

	cursor := e.Cursors.For(bot.BotID)
	offset, bootstrap := cursor.Snapshot()
	events, next, status, err := client.GetUpdates(ctx, offset, bootstrap)
	switch status {
	case remote.StatusOK:
		cursor.Advance(next)
		metrics.SetCursorOffset(bot.BotID, next)
	case remote.StatusTransportError:
		botLog.Warn().Err(err).Msg("getUpdates transport error, skipping drain this cycle")
		events = nil
	default:
		botLog.Warn().Int("status", int(status)).Msg("getUpdates unexpected status")
		events = nil
	}
	if bootstrap {
		// Bootstrap semantics: the cursor is discovered but nothing is
		// processed on the first poll after process start (spec.md §4.3).
		events = nil
	}

	cutoff := time.Now().Add(-e.Cfg.Lookback)
	for _, ev := range events {
		if ev.Date.Before(cutoff) {
			continue
		}
		if _, ok := byTelegramID[ev.TelegramChatID]; ok {
			continue
		}
		chat, err := e.createChat(ctx, &botLog, owner, bot, client, ev.TelegramChatID, ev.ChatTitle)
		if err != nil {
			botLog.Error().Err(err).Int64("telegram_chat_id", ev.TelegramChatID).Msg("create discovered chat")
			continue
		}
		byTelegramID[ev.TelegramChatID] = chat
	}

	for _, chat := range byTelegramID {
		e.reconcileChat(ctx, &botLog, client, owner, bot, chat, events, cutoff)
	}
}
