package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/jsfrau/telegram-stickers-bot/config"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/database"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
	fx.Invoke(func(*Server) {}),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	pinger *database.Pinger,
	logger zerolog.Logger,
) *Server {
	srv := NewServer(serviceCfg.Name, serviceCfg.Port, logger)

	srv.RegisterMetrics()
	srv.RegisterHealth(NewHealthHandler(pinger, logger))

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
