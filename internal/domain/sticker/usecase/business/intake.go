package business

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
	pkgerrors "github.com/jsfrau/telegram-stickers-bot/pkg/errors"
)

func (uc *UseCase) handleIntake(ctx context.Context, s *session.Session, ev dto.Event) error {
	switch ev.Kind {
	case dto.EventMedia:
		return uc.acceptMedia(ctx, s, ev)
	case dto.EventText:
		return stickererrors.ErrUnsupportedMedia
	case dto.EventAction:
		switch ev.Action {
		case consts.ActionDone:
			return uc.finishIntake(ctx, s)
		case consts.ActionCreatePack:
			return uc.startEmoji(ctx, s)
		case consts.ActionEditStickers:
			return uc.startEdit(ctx, s)
		case consts.ActionProcessMedia:
			return uc.startVariantReview(ctx, s)
		}
	}

	return stickererrors.ErrUnknownAction
}

// acceptMedia stores one incoming photo or video and re-prompts according to the mode
func (uc *UseCase) acceptMedia(ctx context.Context, s *session.Session, ev dto.Event) error {
	if ev.Media == nil {
		return stickererrors.ErrUnsupportedMedia
	}
	kind, ok := ev.Media.MediaKind()
	if !ok {
		uc.metrics.RecordMediaRejected("unsupported")
		return stickererrors.ErrUnsupportedMedia
	}

	item, err := uc.storeIncoming(ctx, s.UserID, ev.Media.FileID, kind)
	if err != nil {
		if !isCollaboratorFailure(err) {
			return err
		}
		uc.logger.Warn().Err(err).Int64("user_id", s.UserID).Str("kind", string(kind)).Msg("Failed to accept media")
		uc.metrics.RecordMediaRejected("transformation")
		uc.send(ctx, s.ChatID, textMediaFailed, nil)
		return nil
	}

	s.Add(item)
	uc.metrics.RecordMediaAccepted(string(kind))

	uc.logger.Info().
		Int64("user_id", s.UserID).
		Str("kind", string(kind)).
		Str("path", item.SourcePath).
		Int("count", s.Count()).
		Msg("Media accepted")

	if s.Mode == session.ModeMulti {
		uc.send(ctx, s.ChatID, fmt.Sprintf(textBatchReceived, s.Count()), batchKeyboard())
		return nil
	}

	return uc.finishIntake(ctx, s)
}

// finishIntake shows the status menu with the next steps
func (uc *UseCase) finishIntake(ctx context.Context, s *session.Session) error {
	if s.Count() == 0 {
		return stickererrors.ErrNoMedia
	}

	s.Stage = &session.IntakeStage{}
	uc.send(ctx, s.ChatID, fmt.Sprintf(textStatus, s.Count(), len(s.Images), len(s.Videos)), statusKeyboard())
	return nil
}

// storeIncoming downloads a platform file, converts it into the sticker source
// format under MediaDir and records it. The per-kind counter makes the name unique.
func (uc *UseCase) storeIncoming(ctx context.Context, userID int64, fileID string, kind entities.MediaKind) (*entities.MediaItem, error) {
	var (
		counter int
		err     error
		subdir  string
		ext     string
	)

	if kind == entities.MediaKindImage {
		counter, err = uc.store.NextPhotoCounter(ctx, userID)
		subdir, ext = "images", ".png"
	} else {
		counter, err = uc.store.NextVideoCounter(ctx, userID)
		subdir, ext = "videos", ".webm"
	}
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(uc.opts.MediaDir, subdir, strconv.FormatInt(userID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.WrapInternal("failed to create media directory", err)
	}

	name := fmt.Sprintf("%d_%d%s", userID, counter, ext)
	path := filepath.Join(dir, name)

	if kind == entities.MediaKindImage {
		err = uc.storeImage(ctx, fileID, dir, path, userID, counter)
	} else {
		err = uc.storeVideo(ctx, fileID, path)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.store.RecordMediaItem(ctx, userID, path, name, kind); err != nil {
		return nil, err
	}

	if key, err := uc.archive.Archive(ctx, userID, path); err != nil {
		uc.logger.Warn().Err(err).Int64("user_id", userID).Str("path", path).Msg("Failed to archive media")
	} else if key != "" {
		uc.logger.Debug().Int64("user_id", userID).Str("object_key", key).Msg("Media archived")
	}

	return entities.NewMediaItem(path, kind), nil
}

func (uc *UseCase) storeImage(ctx context.Context, fileID, dir, path string, userID int64, counter int) error {
	tmp := filepath.Join(dir, fmt.Sprintf("temp_%d_%d.jpg", userID, counter))
	defer os.Remove(tmp)

	if err := uc.fetcher.Download(ctx, fileID, tmp); err != nil {
		return fmt.Errorf("%w: %v", stickererrors.ErrDownload, err)
	}

	tctx, cancel := transformCtx(ctx)
	defer cancel()

	err := uc.transformer.NormalizeImage(tctx, tmp, path)
	uc.metrics.RecordTransformation("normalize_image", err)
	if err != nil {
		return fmt.Errorf("%w: %v", stickererrors.ErrTransformation, err)
	}
	return nil
}

func (uc *UseCase) storeVideo(ctx context.Context, fileID, path string) error {
	tmp := strings.TrimSuffix(path, filepath.Ext(path)) + ".mp4"
	defer os.Remove(tmp)

	if err := uc.fetcher.Download(ctx, fileID, tmp); err != nil {
		return fmt.Errorf("%w: %v", stickererrors.ErrDownload, err)
	}

	tctx, cancel := transformCtx(ctx)
	defer cancel()

	out, err := uc.transformer.ConvertClipFormat(tctx, tmp)
	uc.metrics.RecordTransformation("convert_clip", err)
	if err != nil {
		return fmt.Errorf("%w: %v", stickererrors.ErrTransformation, err)
	}

	if out != path {
		if err := os.Rename(out, path); err != nil {
			return fmt.Errorf("%w: %v", stickererrors.ErrTransformation, err)
		}
	}
	return nil
}

// startEdit lists every item with its number and waits for the number to replace
func (uc *UseCase) startEdit(ctx context.Context, s *session.Session) error {
	if s.Count() == 0 {
		return stickererrors.ErrNoMedia
	}

	s.Stage = &session.EditStage{Target: -1}

	for i, item := range s.Items() {
		uc.sendMedia(ctx, s.ChatID, item.Kind, item.Path(), fmt.Sprintf(textEditItem, i+1), nil)
	}
	uc.send(ctx, s.ChatID, textEditChoose, nil)
	return nil
}

func (uc *UseCase) handleEdit(ctx context.Context, s *session.Session, stage *session.EditStage, ev dto.Event) error {
	switch ev.Kind {
	case dto.EventText:
		n, err := strconv.Atoi(strings.TrimSpace(ev.Text))
		if err != nil || n < 1 || n > s.Count() {
			return stickererrors.ErrInvalidItemNumber
		}
		stage.Target = n - 1
		uc.send(ctx, s.ChatID, fmt.Sprintf(textEditSendNew, n), nil)
		return nil

	case dto.EventMedia:
		return uc.replaceItem(ctx, s, stage, ev)

	case dto.EventAction:
		switch ev.Action {
		case consts.ActionEditMore:
			return uc.startEdit(ctx, s)
		case consts.ActionEditDone:
			return uc.startEmoji(ctx, s)
		}
	}

	return stickererrors.ErrUnknownAction
}

func (uc *UseCase) replaceItem(ctx context.Context, s *session.Session, stage *session.EditStage, ev dto.Event) error {
	target, ok := s.ItemAt(stage.Target)
	if !ok {
		return stickererrors.ErrInvalidItemNumber
	}

	if ev.Media == nil {
		return stickererrors.ErrUnsupportedMedia
	}
	kind, ok := ev.Media.MediaKind()
	if !ok {
		return stickererrors.ErrUnsupportedMedia
	}
	if kind != target.Kind {
		return stickererrors.ErrKindMismatch
	}

	item, err := uc.storeIncoming(ctx, s.UserID, ev.Media.FileID, kind)
	if err != nil {
		if !isCollaboratorFailure(err) {
			return err
		}
		uc.logger.Warn().Err(err).Int64("user_id", s.UserID).Int("item_index", stage.Target+1).Msg("Failed to store replacement")
		uc.send(ctx, s.ChatID, textMediaFailed, nil)
		return nil
	}

	if !s.Replace(stage.Target, item) {
		return stickererrors.ErrKindMismatch
	}

	number := stage.Target + 1
	stage.Target = -1
	uc.metrics.RecordMediaAccepted(string(kind))
	uc.send(ctx, s.ChatID, fmt.Sprintf(textEditReplaced, number), editDoneKeyboard())
	return nil
}
