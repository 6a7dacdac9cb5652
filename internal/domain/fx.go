// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker"
)

// Module aggregates all domain modules for fx dependency injection
var Module = fx.Module("domain",
	sticker.Module,
)
