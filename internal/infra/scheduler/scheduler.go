// File: internal/infra/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Runner is the one method the scheduler drives: one full reconciliation
// sweep (spec.md §4.5, §5: "the engine runs a single pass per cycle...not
// cancellable mid-pass; it completes or aborts on the next external
// failure").
type Runner interface {
	RunCycle(ctx context.Context) error
}

// Scheduler periodically runs a Runner's RunCycle on a fixed interval
// (spec.md §6: SERVICE_INTERVAL, default 30s). It is adapted from the
// teacher's notification scheduler: same ticker-driven loop and idempotent
// Start/Stop, but drives the reconciliation engine instead of
// CheckAndNotify.
type Scheduler struct {
	interval time.Duration
	runner   Runner
	log      *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler that runs runner.RunCycle every
// interval. If interval <= 0 it defaults to 30s (spec.md §6).
func NewScheduler(interval time.Duration, runner Runner, log *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		interval: interval,
		runner:   runner,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop in a background goroutine. parentCtx is
// used as the parent for internal contexts; calling Start more than once
// has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

// loop runs one cycle per tick until cancelled. Each cycle runs under a
// context whose timeout equals the configured interval (SPEC_FULL.md
// §11.1); the engine passes that context to the lock and the repositories.
// The Telegram client calls do not take a context, so a stuck remote call is
// not interrupted by it.
func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("scheduler stopping: context cancelled")
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	runCtx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()
	if err := s.runner.RunCycle(runCtx); err != nil {
		s.log.Error().Err(err).Msg("reconciliation cycle aborted")
	}
}

// Stop cancels the scheduler and waits for the loop to finish. Idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	s.log.Info().Msg("scheduler stopped")
}
