package logger

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/jsfrau/telegram-stickers-bot/config"
)

// Module provides logger for fx dependency injection
var Module = fx.Module("logger",
	fx.Provide(provideLogger),
	fx.Provide(provideErrorLog),
)

// provideLogger creates logger from config
func provideLogger(cfg *config.LoggingConfig) zerolog.Logger {
	return New(cfg.Level)
}

func provideErrorLog(cfg *config.LoggingConfig) *ErrorLog {
	return NewErrorLog(cfg.Dir)
}
