// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatwarden/internal/config"
	"chatwarden/internal/domain/ports/lock"
	"chatwarden/internal/engine"
	pg "chatwarden/internal/infra/db/postgres"
	"chatwarden/internal/infra/http"
	"chatwarden/internal/infra/logging"
	"chatwarden/internal/infra/metrics"
	"chatwarden/internal/infra/redis"
	"chatwarden/internal/infra/remote"
	"chatwarden/internal/infra/scheduler"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.TryConnect(ctx, cfg.Database.URL, cfg.Database.MaxConns, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect")
	}
	defer pg.ClosePgxPool(pool)

	// ---- Redis (cycle-leadership lock; optional, spec.md §5) ----
	var locker lock.Locker = redis.NoopLocker{}
	if cfg.Redis.URL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect")
		}
		defer redisClient.Close()
		locker = redis.NewLocker(redisClient)
	} else {
		log.Info().Msg("no redis.url configured, running with single-replica NoopLocker")
	}

	// ---- Repositories ----
	owners := pg.NewOwnerRepo(pool)
	bots := pg.NewBotRepo(pool)
	chats := pg.NewChatRepo(pool)
	employees := pg.NewEmployeeRepo(pool)
	links := pg.NewChatEmployeeRepo(pool)
	tx := pg.NewTxManager(pool)

	// ---- Reconciliation engine ----
	eng := engine.New(
		owners, bots, chats, employees, links, tx,
		remote.NewFactory(),
		locker,
		log,
		engine.Config{
			Lookback:           cfg.Engine.UpdatesLookback,
			WelcomeMessage:     cfg.Engine.WelcomeMessage,
			KickNoticeTemplate: cfg.Engine.KickNoticeTemplate,
			Concurrency:        cfg.Engine.Concurrency,
		},
	)

	sched := scheduler.NewScheduler(cfg.Engine.Interval, eng, log)
	sched.Start(ctx)
	defer sched.Stop()

	// ---- Admin/health HTTP surface ----
	admin := http.NewServer(fmt.Sprintf(":%d", cfg.Admin.Port), func() error {
		return pool.Ping(ctx)
	})
	go func() {
		log.Info().Int("port", cfg.Admin.Port).Msg("admin server listening")
		if err := admin.Start(); err != nil {
			log.Error().Err(err).Msg("admin server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Engine.Interval)
	defer shutdownCancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("admin server shutdown")
	}
}
