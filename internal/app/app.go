// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/jsfrau/telegram-stickers-bot/config"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, database, telegram bot, s3, http)
		infrastructure.Module,

		// Domain (sticker conversation)
		domain.Module,
	)
}
