package business

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
)

// handleGlobalAction serves buttons that work regardless of the session stage.
// handled is false when the action belongs to the current stage.
func (uc *UseCase) handleGlobalAction(ctx context.Context, ev dto.Event) (bool, error) {
	action := ev.Action

	switch action {
	case consts.ActionCreateNew:
		uc.reply(ctx, ev, fmt.Sprintf(textHints, MaxPackNameLength(uc.opts.BotUsername)), dto.Keyboard{
			dto.Row(button("Я понял, продолжить", consts.ActionContinue)),
			dto.Row(button("Загрузить несколько файлов", consts.ActionContinueBatch)),
			backToMainRow(),
		})
		return true, nil
	case consts.ActionContinue:
		uc.sessions.Start(ev.UserID, ev.ChatID, session.ModeSingle)
		uc.logger.Info().Int64("user_id", ev.UserID).Str("mode", "single").Msg("Submission started")
		uc.reply(ctx, ev, textSendStickers, nil)
		return true, nil
	case consts.ActionContinueBatch:
		uc.sessions.Start(ev.UserID, ev.ChatID, session.ModeMulti)
		uc.logger.Info().Int64("user_id", ev.UserID).Str("mode", "multi").Msg("Submission started")
		uc.reply(ctx, ev, textSendBatch, batchKeyboard())
		return true, nil
	case consts.ActionCancel:
		uc.cancelSubmission(ctx, ev)
		return true, nil
	case consts.ActionBackToMain:
		uc.sessions.Reset(ev.UserID)
		return true, uc.showMainMenu(ctx, ev)
	case consts.ActionAbout:
		uc.reply(ctx, ev, textAbout, dto.Keyboard{backToMainRow()})
		return true, nil
	case consts.ActionPublicPacks:
		return true, uc.showPublicPacks(ctx, ev)
	case consts.ActionDeletePack:
		return true, uc.showOwnPacks(ctx, ev)
	case consts.ActionAdminPanel:
		return true, uc.showAdminPanel(ctx, ev)
	}

	switch {
	case strings.HasPrefix(action, consts.ActionConfirmDelete):
		return true, uc.deleteOwnPack(ctx, ev)
	case strings.HasPrefix(action, consts.ActionAdminUsers),
		strings.HasPrefix(action, consts.ActionAdminUser),
		strings.HasPrefix(action, consts.ActionAdminAllPacks),
		strings.HasPrefix(action, consts.ActionAdminPack),
		strings.HasPrefix(action, consts.ActionAdminDeletePack):
		return true, uc.handleAdminAction(ctx, ev)
	}

	return false, nil
}

func (uc *UseCase) showMainMenu(ctx context.Context, ev dto.Event) error {
	admin, err := uc.store.IsAdmin(ctx, ev.UserID)
	if err != nil {
		return err
	}

	var kb dto.Keyboard
	if admin {
		kb = append(kb, dto.Row(button("Админ панель", consts.ActionAdminPanel)))
	}
	kb = append(kb,
		dto.Row(button("Создать новый стикерпак", consts.ActionCreateNew)),
		dto.Row(button("Удалить стикерпак", consts.ActionDeletePack)),
		dto.Row(button("Просмотреть публичные стикерпаки", consts.ActionPublicPacks)),
		dto.Row(button("О боте", consts.ActionAbout)),
	)

	uc.reply(ctx, ev, textWelcome, kb)
	return nil
}

func (uc *UseCase) showPublicPacks(ctx context.Context, ev dto.Event) error {
	packs, err := uc.store.ListPublicPacks(ctx, consts.PublicPacksMax)
	if err != nil {
		return err
	}

	if len(packs) == 0 {
		uc.reply(ctx, ev, textNoPublicPacks, dto.Keyboard{backToMainRow()})
		return nil
	}

	kb := make(dto.Keyboard, 0, len(packs)+1)
	for _, p := range packs {
		kb = append(kb, dto.Row(dto.Button{Text: p.PackName, URL: p.PackLink}))
	}
	kb = append(kb, backToMainRow())

	uc.reply(ctx, ev, textPublicPacks, kb)
	return nil
}

func (uc *UseCase) showOwnPacks(ctx context.Context, ev dto.Event) error {
	packs, err := uc.store.ListUserPacks(ctx, ev.UserID)
	if err != nil {
		return err
	}

	if len(packs) == 0 {
		uc.reply(ctx, ev, textNoOwnPacks, dto.Keyboard{backToMainRow()})
		return nil
	}

	kb := make(dto.Keyboard, 0, len(packs)+1)
	for _, p := range packs {
		kb = append(kb, dto.Row(button(
			fmt.Sprintf("%s (ID: %d)", p.PackName, p.ID),
			withID(consts.ActionConfirmDelete, int64(p.ID)),
		)))
	}
	kb = append(kb, backToMainRow())

	uc.reply(ctx, ev, textChooseDelete, kb)
	return nil
}

func (uc *UseCase) deleteOwnPack(ctx context.Context, ev dto.Event) error {
	packID, ok := actionID(ev.Action, consts.ActionConfirmDelete)
	if !ok {
		return stickererrors.ErrUnknownAction
	}

	pack, err := uc.store.GetPack(ctx, uint(packID))
	if err != nil {
		return err
	}
	if pack.UserID != ev.UserID {
		return stickererrors.ErrNotPackOwner
	}

	return uc.removePack(ctx, ev, pack)
}

// removePack deletes the remote set, then the record
func (uc *UseCase) removePack(ctx context.Context, ev dto.Event, pack *entities.StickerPack) error {
	rctx, cancel := context.WithTimeout(ctx, consts.RegistrationTimeout)
	defer cancel()

	if err := uc.registrar.DeletePack(rctx, pack.SetName); err != nil {
		uc.logger.Error().
			Err(err).
			Uint("pack_id", pack.ID).
			Str("set_name", pack.SetName).
			Msg("Failed to delete sticker set")
		uc.reply(ctx, ev, textDeleteFailed, dto.Keyboard{backToMainRow()})
		return nil
	}

	if err := uc.store.DeletePack(ctx, pack.ID); err != nil {
		return err
	}

	uc.publish(ctx, dto.PackEventDeleted, pack)
	uc.metrics.RecordPackDeleted()

	uc.logger.Info().
		Int64("user_id", ev.UserID).
		Uint("pack_id", pack.ID).
		Str("set_name", pack.SetName).
		Msg("Sticker pack deleted")

	uc.reply(ctx, ev, fmt.Sprintf(textPackDeleted, pack.ID), dto.Keyboard{backToMainRow()})
	return nil
}

// actionID parses the numeric suffix of a prefixed action
func actionID(action, prefix string) (int64, bool) {
	raw, ok := strings.CutPrefix(action, prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
