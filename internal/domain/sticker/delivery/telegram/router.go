package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers message and callback handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, r.handlers.HandleCallback)
	bot.RegisterHandlerMatchFunc(isMessage, r.handlers.HandleMessage)

	r.logger.Info().Msg("All Telegram handlers registered successfully")
}

// RegisterCommands publishes the command menu
func (r *Router) RegisterCommands(ctx context.Context, bot *tgbot.Bot) error {
	commands := make([]models.BotCommand, 0, len(consts.AllCommands))
	for _, c := range consts.AllCommands {
		commands = append(commands, models.BotCommand{Command: c.Name, Description: c.Description})
	}

	if _, err := bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands}); err != nil {
		return err
	}

	r.logger.Info().Int("count", len(commands)).Msg("Bot commands registered")
	return nil
}

func isMessage(update *models.Update) bool {
	return update.Message != nil
}
