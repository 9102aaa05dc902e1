// File: cmd/seed/main.go
package main

import (
	"context"

	"chatwarden/internal/config"
	"chatwarden/internal/domain/model"
	"chatwarden/internal/infra/db/postgres"
	"chatwarden/internal/infra/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfigFrom("config.yaml")
	if err != nil {
		logging.New(config.LogConfig{Level: "info", Format: "console"}).Fatal().Err(err).Msg("config load")
	}
	log := logging.New(cfg.Log)

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()

	// --- Seed an owner (tenant) ---
	var ownerID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (login, email, is_active, is_admin)
		VALUES ($1, $2, true, false)
		ON CONFLICT (login) DO UPDATE SET login = EXCLUDED.login
		RETURNING user_id`, "acme-corp", "ops@acme.example").Scan(&ownerID)
	if err != nil {
		log.Fatal().Err(err).Msg("seed owner")
	}
	log.Info().Int64("owner_id", ownerID).Msg("owner seeded")

	// --- Seed a bot for that owner ---
	var botID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO bots (user_id, bot_token, telegram_user_id, bot_name, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING bot_id`, ownerID, "000000:DEV-SEED-TOKEN", int64(1000001), "acme_bot").Scan(&botID)
	if err != nil {
		log.Fatal().Err(err).Msg("seed bot")
	}
	log.Info().Int64("bot_id", botID).Msg("bot seeded")

	// --- Seed the bot's own employee row (spec.md §4.4: the bot is always
	// tracked as an employee of its own owner so chat_employees links work
	// uniformly for bot and human members alike) ---
	employees := postgres.NewEmployeeRepo(pool)
	botTelegramID := int64(1000001)
	botEmployee := &model.Employee{
		UserID:           ownerID,
		TelegramUserID:   &botTelegramID,
		FullName:         "acme_bot",
		IsActive:         true,
		IsExternal:       false,
		IsBot:            true,
	}
	if _, err := employees.Create(ctx, nil, botEmployee); err != nil {
		log.Warn().Err(err).Msg("seed bot employee")
	}

	// --- Seed a couple of fixture chats, one per chat type the engine
	// cares about on its first sweep ---
	chats := postgres.NewChatRepo(pool)
	fixtures := []*model.Chat{
		{
			BotID:          botID,
			UserID:         ownerID,
			TelegramChatID: -1001000000001,
			TypeID:         model.ChatTypeNew,
			StatusID:       model.ChatStatusOK,
			Title:          []string{"Acme External Partners"},
		},
		{
			BotID:          botID,
			UserID:         ownerID,
			TelegramChatID: -1001000000002,
			TypeID:         model.ChatTypeObserve,
			StatusID:       model.ChatStatusOK,
			Title:          []string{"Acme Watercooler"},
		},
	}
	for _, c := range fixtures {
		saved, err := chats.Create(ctx, nil, c)
		if err != nil {
			log.Warn().Err(err).Int64("telegram_chat_id", c.TelegramChatID).Msg("seed chat")
			continue
		}
		log.Info().Int64("chat_id", saved.ChatID).Str("title", saved.CurrentTitle()).Msg("chat seeded")
	}

	log.Info().Msg("seed complete")
}
