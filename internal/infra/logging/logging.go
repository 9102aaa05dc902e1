// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"chatwarden/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config. Supports
// "trace"|"debug"|"info"|"warn"|"error" levels and "json"|"console" formats
// (SPEC_FULL.md §10.2).
func New(cfg config.LogConfig) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.EqualFold(cfg.Format, "console") {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return &base
}

// ctxKey namespaces values the engine attaches to a context so With can
// surface them on a derived logger without every caller re-threading fields
// by hand.
type ctxKey string

const (
	ctxCycleID ctxKey = "cycle_id"
	ctxOwnerID ctxKey = "owner_id"
	ctxBotID   ctxKey = "bot_id"
)

// With attaches whichever correlation fields are present on ctx (cycle_id,
// owner_id, bot_id) to base, mirroring the teacher's per-request field
// attachment but scoped to the engine's per-cycle/per-bot/per-chat
// correlation (spec.md §6).
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v, ok := ctx.Value(ctxCycleID).(string); ok {
		l = l.Str("cycle_id", v)
	}
	if v, ok := ctx.Value(ctxOwnerID).(int64); ok {
		l = l.Int64("owner_id", v)
	}
	if v, ok := ctx.Value(ctxBotID).(int64); ok {
		l = l.Int64("bot_id", v)
	}
	logger := l.Logger()
	return &logger
}

func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxCycleID, id)
}

func WithOwnerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxOwnerID, id)
}

func WithBotID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxBotID, id)
}
