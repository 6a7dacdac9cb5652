package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
)

// startEmoji restarts assignment from the first item
func (uc *UseCase) startEmoji(ctx context.Context, s *session.Session) error {
	if s.Count() == 0 {
		return stickererrors.ErrNoMedia
	}

	s.ResetEmojis()
	stage := &session.EmojiStage{}
	s.Stage = stage
	return uc.promptEmoji(ctx, s, stage)
}

func (uc *UseCase) promptEmoji(ctx context.Context, s *session.Session, stage *session.EmojiStage) error {
	item, ok := s.ItemAt(stage.Cursor)
	if !ok {
		return uc.startName(ctx, s)
	}

	caption := fmt.Sprintf(textEmojiPrompt, stage.Cursor+1, s.Count())
	uc.sendMedia(ctx, s.ChatID, item.Kind, item.Path(), caption, emojiKeyboard())
	return nil
}

func (uc *UseCase) handleEmoji(ctx context.Context, s *session.Session, stage *session.EmojiStage, ev dto.Event) error {
	item, ok := s.ItemAt(stage.Cursor)
	if !ok {
		return uc.startName(ctx, s)
	}

	switch ev.Kind {
	case dto.EventText:
		emoji := strings.TrimSpace(ev.Text)
		if !media.IsEmoji(emoji) {
			return stickererrors.ErrInvalidEmoji
		}
		item.Emoji = emoji

	case dto.EventAction:
		switch ev.Action {
		case consts.ActionSkipEmoji:
			item.Emoji = media.RandomEmoji()
		case consts.ActionSkipAllEmoji:
			items := s.Items()
			for _, it := range items[stage.Cursor:] {
				it.Emoji = media.RandomEmoji()
			}
			stage.Cursor = len(items)
			return uc.startName(ctx, s)
		default:
			return stickererrors.ErrUnknownAction
		}

	default:
		return stickererrors.ErrInvalidEmoji
	}

	stage.Cursor++
	return uc.promptEmoji(ctx, s, stage)
}

func (uc *UseCase) startName(ctx context.Context, s *session.Session) error {
	s.Stage = &session.NameStage{}
	uc.send(ctx, s.ChatID, textNamePrompt, nil)
	return nil
}

func (uc *UseCase) handleName(ctx context.Context, s *session.Session, ev dto.Event) error {
	if ev.Kind != dto.EventText {
		return stickererrors.ErrInvalidPackName
	}

	name := strings.TrimSpace(ev.Text)
	if err := ValidatePackName(name, uc.opts.BotUsername); err != nil {
		return err
	}

	s.PackName = name
	s.AuthorName = ev.AuthorName()
	s.Stage = &session.PrivacyStage{}

	uc.send(ctx, s.ChatID, textPrivacyPrompt, privacyKeyboard())
	return nil
}

func (uc *UseCase) handlePrivacy(ctx context.Context, s *session.Session, ev dto.Event) error {
	if ev.Kind != dto.EventAction {
		return stickererrors.ErrUnknownAction
	}

	switch ev.Action {
	case consts.ActionPrivate:
		s.IsPrivate = true
	case consts.ActionPublic:
		s.IsPrivate = false
	case consts.ActionBackToName:
		return uc.startName(ctx, s)
	default:
		return stickererrors.ErrUnknownAction
	}

	uc.reply(ctx, ev, textCreating, nil)
	return uc.assemble(ctx, s)
}

// assemble runs the assembler and finishes the conversation. A known-invalid
// clip sends the user to invalid review instead of registering anything.
func (uc *UseCase) assemble(ctx context.Context, s *session.Session) error {
	if s.Count() == 0 {
		s.Stage = &session.IntakeStage{}
		uc.send(ctx, s.ChatID, textNothingLeft, nil)
		return nil
	}

	start := time.Now()

	res, err := uc.assembler.Assemble(ctx, s)
	if err != nil {
		if !errors.Is(err, stickererrors.ErrRegistration) {
			return err
		}
		uc.logger.Error().Err(err).Int64("user_id", s.UserID).Str("pack_name", s.PackName).Msg("Failed to create sticker set")
		uc.sessions.Reset(s.UserID)
		uc.send(ctx, s.ChatID, textCreateFailed, nil)
		return nil
	}

	if len(res.Invalid) > 0 {
		return uc.startInvalidReview(ctx, s, res.Invalid)
	}

	for _, index := range res.Failed {
		uc.send(ctx, s.ChatID, fmt.Sprintf(textAddFailed, index), nil)
	}

	pack := &entities.StickerPack{
		UserID:     s.UserID,
		PackName:   s.PackName,
		SetName:    res.SetName,
		AuthorName: s.AuthorName,
		PackLink:   res.Link,
		IsPrivate:  s.IsPrivate,
		Stickers:   res.Added,
	}
	if err := uc.store.RecordPack(ctx, pack); err != nil {
		return err
	}

	uc.publish(ctx, dto.PackEventCreated, pack)
	uc.metrics.RecordPackCreated(time.Since(start).Seconds())
	uc.sessions.Reset(s.UserID)

	uc.logger.Info().
		Int64("user_id", s.UserID).
		Uint("pack_id", pack.ID).
		Str("set_name", pack.SetName).
		Str("format", res.Format).
		Int("stickers", res.Added).
		Int("failed", len(res.Failed)).
		Msg("Sticker pack created")

	uc.send(ctx, s.ChatID, fmt.Sprintf(textPackCreated, s.PackName, res.Link), nil)
	return nil
}
