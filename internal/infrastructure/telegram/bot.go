// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"
)

// Bot wraps the Telegram bot for infrastructure layer
type Bot struct {
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewBot creates a new Telegram bot wrapper
func NewBot(token string, logger zerolog.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	logger = logger.With().Str("component", "telegram-bot").Logger()

	opts := []tgbot.Option{
		tgbot.WithErrorsHandler(func(err error) {
			logger.Warn().Err(err).Msg("Telegram polling error")
		}),
	}

	bot, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Msg("Telegram bot created successfully")

	return &Bot{
		bot:    bot,
		logger: logger,
	}, nil
}

// Raw returns the underlying telegram bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// Start starts the bot (blocking call)
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info().Msg("Starting Telegram bot...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
}
