package business

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/metrics"
)

// AssemblyResult is the outcome of one assembly attempt.
// When Invalid is non-empty nothing was registered.
type AssemblyResult struct {
	Invalid []session.InvalidEntry
	SetName string
	Link    string
	Format  string
	Added   int
	// Failed holds 1-based positions of stickers that could not be added
	Failed []int
}

// Assembler turns a finished submission into a registered sticker set
type Assembler struct {
	transformer deps.Transformer
	registrar   deps.Registrar
	limiter     *rate.Limiter
	botUsername string
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAssembler creates an assembler. Additions are spaced by interval across all users.
func NewAssembler(
	transformer deps.Transformer,
	registrar deps.Registrar,
	botUsername string,
	interval time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Assembler {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Assembler{
		transformer: transformer,
		registrar:   registrar,
		limiter:     rate.NewLimiter(limit, 1),
		botUsername: botUsername,
		metrics:     m,
		logger:      logger.With().Str("component", "assembler").Logger(),
	}
}

// Assemble revalidates clips, normalizes mixed kinds, pads emoji and registers the set.
// Invalid clips are moved out of s.Videos into the result and abort the attempt.
func (a *Assembler) Assemble(ctx context.Context, s *session.Session) (*AssemblyResult, error) {
	if invalid := a.revalidate(ctx, s); len(invalid) > 0 {
		return &AssemblyResult{Invalid: invalid}, nil
	}

	if len(s.Images) > 0 && len(s.Videos) > 0 {
		a.convertImages(ctx, s)
	}

	items := s.Items()
	if len(items) == 0 {
		return nil, stickererrors.ErrNoMedia
	}

	for _, item := range items {
		if item.Emoji == "" {
			item.Emoji = media.RandomEmoji()
		}
	}

	format := consts.FormatVideo
	if len(s.Images) > 0 {
		format = consts.FormatStatic
	}

	res := &AssemblyResult{
		SetName: StickerSetName(s.PackName, format, a.botUsername),
		Format:  format,
	}
	res.Link = PackLink(res.SetName)

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := a.create(ctx, s, res.SetName, input(items[0], format)); err != nil {
		return nil, err
	}
	res.Added = 1

	for i := 1; i < len(items); i++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		if err := a.add(ctx, s.UserID, res.SetName, input(items[i], format)); err != nil {
			a.logger.Warn().
				Err(err).
				Int64("user_id", s.UserID).
				Str("set_name", res.SetName).
				Int("item_index", i+1).
				Msg("Failed to add sticker, skipping")
			a.metrics.RecordStickerAddFailure()
			res.Failed = append(res.Failed, i+1)
			continue
		}
		res.Added++
	}

	return res, nil
}

// revalidate probes every clip and moves the failing ones out of the session
func (a *Assembler) revalidate(ctx context.Context, s *session.Session) []session.InvalidEntry {
	var (
		valid   []*entities.MediaItem
		invalid []session.InvalidEntry
	)

	for _, item := range s.Videos {
		tctx, cancel := transformCtx(ctx)
		probe, err := a.transformer.Probe(tctx, item.Path())
		cancel()

		if err != nil {
			a.logger.Warn().Err(err).Str("path", item.Path()).Msg("Failed to probe video")
			invalid = append(invalid, session.InvalidEntry{Item: item, Reason: textProbeFailed})
			continue
		}

		if ok, reason := media.ValidateVideo(probe); !ok {
			invalid = append(invalid, session.InvalidEntry{Item: item, Reason: reason})
			continue
		}
		valid = append(valid, item)
	}

	if len(invalid) > 0 {
		s.Videos = valid
	}
	return invalid
}

// convertImages renders every image as a clip appended to the videos. An image
// that fails to convert is dropped.
func (a *Assembler) convertImages(ctx context.Context, s *session.Session) {
	for i, img := range s.Images {
		tctx, cancel := transformCtx(ctx)
		clip, err := a.transformer.ConvertImageToClip(tctx, img.Path())
		cancel()

		a.metrics.RecordTransformation("image_to_clip", err)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Int64("user_id", s.UserID).
				Int("item_index", i+1).
				Str("path", img.Path()).
				Msg("Failed to convert image to clip, dropping it")
			continue
		}

		converted := entities.NewMediaItem(clip, entities.MediaKindVideo)
		converted.Emoji = img.Emoji
		s.Videos = append(s.Videos, converted)
	}

	s.Images = nil
}

func (a *Assembler) create(ctx context.Context, s *session.Session, setName string, first dto.StickerInput) error {
	rctx, cancel := context.WithTimeout(ctx, consts.RegistrationTimeout)
	defer cancel()

	if err := a.registrar.CreatePack(rctx, s.UserID, setName, s.PackName, first); err != nil {
		return fmt.Errorf("%w: %v", stickererrors.ErrRegistration, err)
	}
	return nil
}

func (a *Assembler) add(ctx context.Context, ownerID int64, setName string, item dto.StickerInput) error {
	rctx, cancel := context.WithTimeout(ctx, consts.RegistrationTimeout)
	defer cancel()

	return a.registrar.AddItem(rctx, ownerID, setName, item)
}

func input(item *entities.MediaItem, format string) dto.StickerInput {
	return dto.StickerInput{
		Path:   item.Path(),
		Emoji:  item.Emoji,
		Format: format,
	}
}
