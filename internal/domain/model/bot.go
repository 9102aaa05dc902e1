// File: internal/domain/model/bot.go
package model

// Bot is a credentialled identity in the remote messaging API, owned by
// exactly one Owner.
type Bot struct {
	BotID          int64
	UserID         int64
	BotToken       string
	TelegramUserID int64
	BotName        string
	IsActive       bool
}
