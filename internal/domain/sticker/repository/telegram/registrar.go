// Package telegram contains the Bot API backed sticker-set registrar and file fetcher
package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
)

// stickerAPI is the subset of *tgbot.Bot used for sticker sets
type stickerAPI interface {
	UploadStickerFile(ctx context.Context, params *tgbot.UploadStickerFileParams) (*models.File, error)
	CreateNewStickerSet(ctx context.Context, params *tgbot.CreateNewStickerSetParams) (bool, error)
	AddStickerToSet(ctx context.Context, params *tgbot.AddStickerToSetParams) (bool, error)
	DeleteStickerSet(ctx context.Context, params *tgbot.DeleteStickerSetParams) (bool, error)
}

// Registrar implements deps.Registrar on top of the Bot API
type Registrar struct {
	api    stickerAPI
	logger zerolog.Logger
}

// NewRegistrar creates a new sticker-set registrar
func NewRegistrar(bot *tgbot.Bot, logger zerolog.Logger) deps.Registrar {
	return newRegistrar(bot, logger)
}

func newRegistrar(api stickerAPI, logger zerolog.Logger) *Registrar {
	return &Registrar{
		api:    api,
		logger: logger.With().Str("component", "sticker-registrar").Logger(),
	}
}

// CreatePack registers a new set with its first sticker
func (r *Registrar) CreatePack(ctx context.Context, ownerID int64, setName, title string, first dto.StickerInput) error {
	sticker, err := r.inputSticker(ctx, ownerID, first)
	if err != nil {
		return err
	}

	ok, err := r.api.CreateNewStickerSet(ctx, &tgbot.CreateNewStickerSetParams{
		UserID:   ownerID,
		Name:     setName,
		Title:    title,
		Stickers: []models.InputSticker{sticker},
	})
	if err != nil {
		return fmt.Errorf("failed to create sticker set %s: %w", setName, err)
	}
	if !ok {
		return fmt.Errorf("sticker set %s was not created", setName)
	}

	r.logger.Info().
		Int64("user_id", ownerID).
		Str("set_name", setName).
		Str("format", first.Format).
		Msg("Sticker set created")

	return nil
}

// AddItem appends one sticker to an existing set
func (r *Registrar) AddItem(ctx context.Context, ownerID int64, setName string, item dto.StickerInput) error {
	sticker, err := r.inputSticker(ctx, ownerID, item)
	if err != nil {
		return err
	}

	ok, err := r.api.AddStickerToSet(ctx, &tgbot.AddStickerToSetParams{
		UserID:  ownerID,
		Name:    setName,
		Sticker: sticker,
	})
	if err != nil {
		return fmt.Errorf("failed to add sticker to %s: %w", setName, err)
	}
	if !ok {
		return fmt.Errorf("sticker was not added to %s", setName)
	}

	r.logger.Debug().Int64("user_id", ownerID).Str("set_name", setName).Msg("Sticker added")
	return nil
}

// DeletePack removes a set
func (r *Registrar) DeletePack(ctx context.Context, setName string) error {
	ok, err := r.api.DeleteStickerSet(ctx, &tgbot.DeleteStickerSetParams{Name: setName})
	if err != nil {
		return fmt.Errorf("%w: failed to delete sticker set %s: %v", stickererrors.ErrRegistration, setName, err)
	}
	if !ok {
		return fmt.Errorf("%w: sticker set %s was not deleted", stickererrors.ErrRegistration, setName)
	}

	r.logger.Info().Str("set_name", setName).Msg("Sticker set deleted")
	return nil
}

// inputSticker uploads the local file and references it by file id
func (r *Registrar) inputSticker(ctx context.Context, ownerID int64, item dto.StickerInput) (models.InputSticker, error) {
	data, err := os.Open(item.Path)
	if err != nil {
		return models.InputSticker{}, fmt.Errorf("failed to open sticker file: %w", err)
	}
	defer data.Close()

	file, err := r.api.UploadStickerFile(ctx, &tgbot.UploadStickerFileParams{
		UserID: ownerID,
		Sticker: &models.InputFileUpload{
			Filename: filepath.Base(item.Path),
			Data:     data,
		},
		StickerFormat: item.Format,
	})
	if err != nil {
		return models.InputSticker{}, fmt.Errorf("failed to upload sticker file %s: %w", filepath.Base(item.Path), err)
	}

	return models.InputSticker{
		Sticker:   &models.InputFileString{Data: file.FileID},
		Format:    item.Format,
		EmojiList: []string{item.Emoji},
	}, nil
}
