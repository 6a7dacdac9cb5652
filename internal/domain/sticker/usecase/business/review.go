package business

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
)

func (uc *UseCase) startVariantReview(ctx context.Context, s *session.Session) error {
	if s.Count() == 0 {
		return stickererrors.ErrNoMedia
	}

	stage := &session.VariantReviewStage{}
	s.Stage = stage
	return uc.present(ctx, s, stage)
}

// present shows the item under the cursor with its variants. Past the last
// item the review is complete and emoji assignment begins.
func (uc *UseCase) present(ctx context.Context, s *session.Session, stage *session.VariantReviewStage) error {
	item, ok := s.ItemAt(stage.Cursor)
	if !ok {
		return uc.startEmoji(ctx, s)
	}

	total := s.Count()

	if len(item.VariantPaths) == 0 {
		if err := uc.produceVariants(ctx, s.UserID, stage.Cursor, item); err != nil {
			caption := fmt.Sprintf(textReviewFailed, stage.Cursor+1, total)
			uc.sendMedia(ctx, s.ChatID, item.Kind, item.SourcePath, caption, reviewKeyboard(stage.Cursor, total, 0))
			return nil
		}
	}

	uc.sendMedia(ctx, s.ChatID, item.Kind, item.SourcePath, fmt.Sprintf(textReviewItem, stage.Cursor+1, total), nil)
	for k, path := range item.VariantPaths {
		uc.sendMedia(ctx, s.ChatID, item.Kind, path, fmt.Sprintf(textReviewVariant, k+1), nil)
	}
	uc.send(ctx, s.ChatID, textReviewChoose, reviewKeyboard(stage.Cursor, total, len(item.VariantPaths)))
	return nil
}

// produceVariants fills the item's variant cache. A failure is logged and the item keeps its source.
func (uc *UseCase) produceVariants(ctx context.Context, userID int64, index int, item *entities.MediaItem) error {
	tctx, cancel := transformCtx(ctx)
	defer cancel()

	variants, err := uc.transformer.ProduceVariants(tctx, item.SourcePath, item.Kind)
	uc.metrics.RecordTransformation("variants", err)
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Int64("user_id", userID).
			Int("item_index", index+1).
			Str("path", item.SourcePath).
			Msg("Failed to produce variants")
		return fmt.Errorf("%w: %v", stickererrors.ErrTransformation, err)
	}

	item.VariantPaths = variants
	return nil
}

func (uc *UseCase) handleVariantReview(ctx context.Context, s *session.Session, stage *session.VariantReviewStage, ev dto.Event) error {
	if ev.Kind != dto.EventAction {
		return stickererrors.ErrUnknownAction
	}

	item, ok := s.ItemAt(stage.Cursor)
	if !ok {
		return uc.startEmoji(ctx, s)
	}

	switch action := ev.Action; {
	case strings.HasPrefix(action, consts.ActionSelectVariant):
		k, err := strconv.Atoi(strings.TrimPrefix(action, consts.ActionSelectVariant))
		if err != nil || k < 0 || k >= len(item.VariantPaths) {
			return stickererrors.ErrInvalidVariant
		}
		item.SelectedPath = item.VariantPaths[k]
		stage.Cursor++
		return uc.present(ctx, s, stage)

	case action == consts.ActionKeepOriginal:
		item.SelectedPath = ""
		stage.Cursor++
		return uc.present(ctx, s, stage)

	case action == consts.ActionPrevMedia:
		stage.Cursor = session.Clamp(stage.Cursor-1, s.Count())
		return uc.present(ctx, s, stage)

	case action == consts.ActionNextMedia:
		stage.Cursor = session.Clamp(stage.Cursor+1, s.Count())
		return uc.present(ctx, s, stage)

	case action == consts.ActionCreatePack:
		return uc.startEmoji(ctx, s)

	case action == consts.ActionBackToIntake:
		return uc.finishIntake(ctx, s)
	}

	return stickererrors.ErrUnknownAction
}

// startInvalidReview reports every invalid clip and walks the user through them
func (uc *UseCase) startInvalidReview(ctx context.Context, s *session.Session, entries []session.InvalidEntry) error {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf(textInvalidSummary, len(entries)))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", filepath.Base(e.Item.Path()), e.Reason))
	}
	uc.send(ctx, s.ChatID, strings.Join(lines, "\n"), nil)

	stage := &session.InvalidReviewStage{Entries: entries}
	s.Stage = stage
	return uc.showInvalid(ctx, s, stage)
}

func (uc *UseCase) showInvalid(ctx context.Context, s *session.Session, stage *session.InvalidReviewStage) error {
	entry, ok := stage.Current()
	if !ok {
		return uc.finishInvalidReview(ctx, s)
	}

	caption := fmt.Sprintf(textInvalidItem, stage.Cursor+1, len(stage.Entries), entry.Reason)
	uc.sendMedia(ctx, s.ChatID, entities.MediaKindVideo, entry.Item.Path(), caption, invalidKeyboard())
	return nil
}

// handleInvalidReview resolves each flagged clip to trimmed-and-requeued or deleted.
// The review has no exit other than resolving every entry.
func (uc *UseCase) handleInvalidReview(ctx context.Context, s *session.Session, stage *session.InvalidReviewStage, ev dto.Event) error {
	if ev.Kind != dto.EventAction {
		return stickererrors.ErrUnknownAction
	}

	switch ev.Action {
	case consts.ActionPrevInvalid:
		stage.Cursor = session.Clamp(stage.Cursor-1, len(stage.Entries))
	case consts.ActionNextInvalid:
		stage.Cursor = session.Clamp(stage.Cursor+1, len(stage.Entries))
	case consts.ActionTrimCurrent:
		if entry, ok := stage.Remove(); ok {
			uc.trimInto(ctx, s, entry)
		}
	case consts.ActionTrimAll:
		for len(stage.Entries) > 0 {
			stage.Cursor = 0
			entry, _ := stage.Remove()
			uc.trimInto(ctx, s, entry)
		}
	case consts.ActionDeleteCurrent:
		if entry, ok := stage.Remove(); ok {
			uc.logger.Info().
				Int64("user_id", s.UserID).
				Str("path", entry.Item.Path()).
				Msg("Invalid video removed from submission")
		}
	default:
		return stickererrors.ErrUnknownAction
	}

	return uc.showInvalid(ctx, s, stage)
}

// trimInto trims a flagged clip and requeues it. A failed trim keeps the original path.
func (uc *UseCase) trimInto(ctx context.Context, s *session.Session, entry session.InvalidEntry) {
	item := entry.Item

	tctx, cancel := transformCtx(ctx)
	defer cancel()

	out, err := uc.transformer.Trim(tctx, item.Path())
	uc.metrics.RecordTransformation("trim", err)
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Int64("user_id", s.UserID).
			Str("path", item.Path()).
			Msg("Failed to trim video, keeping original")
	} else {
		item.SourcePath = out
		item.SelectedPath = ""
		item.VariantPaths = nil
	}

	s.Videos = append(s.Videos, item)
}

func (uc *UseCase) finishInvalidReview(ctx context.Context, s *session.Session) error {
	uc.send(ctx, s.ChatID, textInvalidDone, nil)
	return uc.assemble(ctx, s)
}
