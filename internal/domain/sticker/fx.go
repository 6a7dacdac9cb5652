// Package sticker contains the sticker-pack domain module
package sticker

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/jsfrau/telegram-stickers-bot/config"
	telegramDelivery "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/delivery/telegram"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	kafkaRepo "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/repository/kafka"
	postgresRepo "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/repository/postgres"
	s3Repo "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/repository/s3"
	telegramRepo "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/repository/telegram"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/repository/transformer"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/usecase/business"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/logger"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/metrics"
	s3infra "github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/s3"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/telegram"
)

// Module provides sticker domain components for fx dependency injection
var Module = fx.Module("sticker",
	// Repository
	fx.Provide(provideStore),
	fx.Provide(transformer.NewTransformer),
	fx.Provide(provideRegistrar),
	fx.Provide(provideFetcher),
	fx.Provide(kafkaRepo.NewProducer),
	fx.Provide(provideArchive),
	fx.Provide(provideFaultRecorder),

	// UseCase
	fx.Provide(provideUseCase),

	// Delivery - Telegram (needs raw bot from infrastructure)
	fx.Provide(provideTelegramHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Wire cyclic dependency and register routes
	fx.Invoke(wireAndRegister),
)

func provideStore(db *gorm.DB) deps.Store {
	return postgresRepo.NewStore(db)
}

func provideRegistrar(bot *telegram.Bot, logger zerolog.Logger) deps.Registrar {
	return telegramRepo.NewRegistrar(bot.Raw(), logger)
}

func provideFetcher(bot *telegram.Bot, logger zerolog.Logger) deps.MediaFetcher {
	return telegramRepo.NewFetcher(bot.Raw(), logger)
}

// provideArchive disables archiving when no S3 client is configured
func provideArchive(client *s3infra.Client) deps.MediaArchive {
	return s3Repo.NewArchive(client)
}

func provideFaultRecorder(l *logger.ErrorLog) deps.FaultRecorder {
	return l
}

type useCaseParams struct {
	fx.In

	Store       deps.Store
	Transformer deps.Transformer
	Registrar   deps.Registrar
	Fetcher     deps.MediaFetcher
	Producer    deps.PackEventProducer
	Archive     deps.MediaArchive
	Faults      deps.FaultRecorder

	Telegram *config.TelegramConfig
	Media    *config.MediaConfig
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

func provideUseCase(p useCaseParams) *business.UseCase {
	return business.NewUseCase(
		business.Deps{
			Store:       p.Store,
			Transformer: p.Transformer,
			Registrar:   p.Registrar,
			Fetcher:     p.Fetcher,
			Producer:    p.Producer,
			Archive:     p.Archive,
			Faults:      p.Faults,
		},
		business.Options{
			MediaDir:    p.Media.Dir,
			BotUsername: p.Telegram.BotUsername,
			AddInterval: p.Telegram.StickerAddInterval,
		},
		p.Metrics,
		p.Logger.With().Str("component", "sticker-usecase").Logger(),
	)
}

// provideTelegramHandlers creates Telegram handlers with raw bot
func provideTelegramHandlers(uc *business.UseCase, bot *telegram.Bot, logger zerolog.Logger) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(uc, bot.Raw(), logger)
}

// wireAndRegister resolves cyclic dependency and registers routes
func wireAndRegister(
	lc fx.Lifecycle,
	uc *business.UseCase,
	handlers *telegramDelivery.Handlers,
	router *telegramDelivery.Router,
	bot *telegram.Bot,
	producer deps.PackEventProducer,
	sessionCfg *config.SessionConfig,
	logger zerolog.Logger,
) {
	// Handlers implements deps.Transport
	// This resolves the cyclic dependency: UseCase -> Transport <- Handlers -> UseCase
	uc.SetSender(handlers)

	router.RegisterRoutes(bot.Raw())

	var cancelJanitor context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := router.RegisterCommands(ctx, bot.Raw()); err != nil {
				logger.Warn().Err(err).Msg("Failed to register bot commands")
			}

			var janitorCtx context.Context
			janitorCtx, cancelJanitor = context.WithCancel(context.Background())
			go uc.RunJanitor(janitorCtx, sessionCfg.IdleTimeout)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancelJanitor != nil {
				cancelJanitor()
			}

			if err := uc.Stop(ctx); err != nil {
				logger.Warn().Err(err).Msg("Sticker use case did not drain before shutdown")
			}

			return producer.Close()
		},
	})
}
