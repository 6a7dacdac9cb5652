package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/jsfrau/telegram-stickers-bot/config"
)

// Module provides Telegram bot for fx dependency injection
var Module = fx.Module("telegram",
	fx.Provide(provideBot),
	fx.Invoke(registerLifecycle),
)

// provideBot creates Telegram bot from config
func provideBot(cfg *config.TelegramConfig, logger zerolog.Logger) (*Bot, error) {
	return NewBot(cfg.BotToken, logger)
}

// registerLifecycle registers bot lifecycle hooks
func registerLifecycle(lc fx.Lifecycle, bot *Bot) {
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan struct{})

			go func() {
				defer close(done)
				bot.Start(ctx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel == nil {
				return nil
			}
			cancel()

			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
