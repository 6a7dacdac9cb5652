// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/database"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/http"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/logger"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/metrics"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/s3"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	database.Module,
	telegram.Module,
	s3.Module,
	http.Module,
)
