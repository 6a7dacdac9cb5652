package telegram

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
)

type fakeStickerAPI struct {
	uploads   []*tgbot.UploadStickerFileParams
	created   *tgbot.CreateNewStickerSetParams
	added     []*tgbot.AddStickerToSetParams
	deleted   string
	uploadErr error
	addErr    error
	deleteErr error
}

func (f *fakeStickerAPI) UploadStickerFile(_ context.Context, params *tgbot.UploadStickerFileParams) (*models.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, params)
	return &models.File{FileID: "file-" + params.StickerFormat}, nil
}

func (f *fakeStickerAPI) CreateNewStickerSet(_ context.Context, params *tgbot.CreateNewStickerSetParams) (bool, error) {
	f.created = params
	return true, nil
}

func (f *fakeStickerAPI) AddStickerToSet(_ context.Context, params *tgbot.AddStickerToSetParams) (bool, error) {
	if f.addErr != nil {
		return false, f.addErr
	}
	f.added = append(f.added, params)
	return true, nil
}

func (f *fakeStickerAPI) DeleteStickerSet(_ context.Context, params *tgbot.DeleteStickerSetParams) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleted = params.Name
	return true, nil
}

func writeSticker(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("sticker"), 0o644))
	return path
}

func TestRegistrarCreatePack(t *testing.T) {
	api := &fakeStickerAPI{}
	r := newRegistrar(api, zerolog.Nop())
	path := writeSticker(t, "1_1.png")

	err := r.CreatePack(context.Background(), 1, "cats_static_by_bot", "cats", dto.StickerInput{
		Path:   path,
		Emoji:  "🐱",
		Format: "static",
	})
	require.NoError(t, err)

	require.Len(t, api.uploads, 1)
	assert.Equal(t, int64(1), api.uploads[0].UserID)
	assert.Equal(t, "static", api.uploads[0].StickerFormat)

	require.NotNil(t, api.created)
	assert.Equal(t, "cats_static_by_bot", api.created.Name)
	assert.Equal(t, "cats", api.created.Title)
	require.Len(t, api.created.Stickers, 1)
	assert.Equal(t, &models.InputFileString{Data: "file-static"}, api.created.Stickers[0].Sticker)
	assert.Equal(t, []string{"🐱"}, api.created.Stickers[0].EmojiList)
}

func TestRegistrarAddItemPropagatesErrors(t *testing.T) {
	api := &fakeStickerAPI{addErr: errors.New("STICKERS_TOO_MUCH")}
	r := newRegistrar(api, zerolog.Nop())

	err := r.AddItem(context.Background(), 1, "cats_video_by_bot", dto.StickerInput{
		Path:   writeSticker(t, "1_2.webm"),
		Emoji:  "🐶",
		Format: "video",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STICKERS_TOO_MUCH")
}

func TestRegistrarMissingFile(t *testing.T) {
	api := &fakeStickerAPI{}
	r := newRegistrar(api, zerolog.Nop())

	err := r.AddItem(context.Background(), 1, "cats_static_by_bot", dto.StickerInput{
		Path:   filepath.Join(t.TempDir(), "missing.png"),
		Format: "static",
	})
	require.Error(t, err)
	assert.Empty(t, api.uploads)
}

func TestRegistrarDeletePack(t *testing.T) {
	api := &fakeStickerAPI{}
	r := newRegistrar(api, zerolog.Nop())

	require.NoError(t, r.DeletePack(context.Background(), "cats_static_by_bot"))
	assert.Equal(t, "cats_static_by_bot", api.deleted)
}

func TestRegistrarDeletePackFailureIsRegistrationError(t *testing.T) {
	api := &fakeStickerAPI{deleteErr: errors.New("Bad Request: STICKERSET_INVALID")}
	r := newRegistrar(api, zerolog.Nop())

	err := r.DeletePack(context.Background(), "cats_static_by_bot")
	require.Error(t, err)
	assert.ErrorIs(t, err, stickererrors.ErrRegistration)
	assert.Contains(t, err.Error(), "STICKERSET_INVALID")
}
