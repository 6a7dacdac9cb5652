package telegram

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
)

const downloadTimeout = time.Minute

// fileAPI is the subset of *tgbot.Bot used to resolve file downloads
type fileAPI interface {
	GetFile(ctx context.Context, params *tgbot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// httpDoer is satisfied by *fasthttp.Client
type httpDoer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Fetcher implements deps.MediaFetcher
type Fetcher struct {
	api    fileAPI
	client httpDoer
	logger zerolog.Logger
}

// NewFetcher creates a new file fetcher
func NewFetcher(bot *tgbot.Bot, logger zerolog.Logger) deps.MediaFetcher {
	return newFetcher(bot, &fasthttp.Client{
		Name:                "sticker-bot",
		MaxResponseBodySize: 50 * 1024 * 1024,
	}, logger)
}

func newFetcher(api fileAPI, client httpDoer, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		api:    api,
		client: client,
		logger: logger.With().Str("component", "media-fetcher").Logger(),
	}
}

// Download stores the file identified by fileID at dst
func (f *Fetcher) Download(ctx context.Context, fileID, dst string) error {
	file, err := f.api.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return fmt.Errorf("failed to resolve file: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.api.FileDownloadLink(file))
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(downloadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("failed to download file: status %d", resp.StatusCode())
	}

	if err := os.WriteFile(dst, resp.Body(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	f.logger.Debug().
		Str("file_path", file.FilePath).
		Str("dst", dst).
		Int("size", len(resp.Body())).
		Msg("File downloaded")

	return nil
}
