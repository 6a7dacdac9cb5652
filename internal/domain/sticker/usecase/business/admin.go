package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
)

func (uc *UseCase) requireAdmin(ctx context.Context, userID int64) error {
	admin, err := uc.store.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		uc.logger.Warn().Int64("user_id", userID).Msg("Admin action refused")
		return stickererrors.ErrNotAdmin
	}
	return nil
}

func (uc *UseCase) showAdminPanel(ctx context.Context, ev dto.Event) error {
	if err := uc.requireAdmin(ctx, ev.UserID); err != nil {
		return err
	}

	uc.reply(ctx, ev, textAdminPanel, dto.Keyboard{
		dto.Row(button("Пользователи", withID(consts.ActionAdminUsers, 0))),
		dto.Row(button("Все стикерпаки", withID(consts.ActionAdminAllPacks, 0))),
		backToMainRow(),
	})
	return nil
}

// handleAdminAction serves the paginated admin screens. Page numbers and ids travel in the action.
func (uc *UseCase) handleAdminAction(ctx context.Context, ev dto.Event) error {
	if err := uc.requireAdmin(ctx, ev.UserID); err != nil {
		return err
	}

	action := ev.Action
	switch {
	case strings.HasPrefix(action, consts.ActionAdminUsers):
		page, ok := actionID(action, consts.ActionAdminUsers)
		if !ok {
			return stickererrors.ErrUnknownAction
		}
		return uc.showAdminUsers(ctx, ev, int(page))
	case strings.HasPrefix(action, consts.ActionAdminUser):
		userID, ok := actionID(action, consts.ActionAdminUser)
		if !ok {
			return stickererrors.ErrUnknownAction
		}
		return uc.showAdminUserPacks(ctx, ev, userID)
	case strings.HasPrefix(action, consts.ActionAdminAllPacks):
		page, ok := actionID(action, consts.ActionAdminAllPacks)
		if !ok {
			return stickererrors.ErrUnknownAction
		}
		return uc.showAdminAllPacks(ctx, ev, int(page))
	case strings.HasPrefix(action, consts.ActionAdminPack):
		packID, ok := actionID(action, consts.ActionAdminPack)
		if !ok {
			return stickererrors.ErrUnknownAction
		}
		return uc.showAdminPack(ctx, ev, uint(packID))
	case strings.HasPrefix(action, consts.ActionAdminDeletePack):
		packID, ok := actionID(action, consts.ActionAdminDeletePack)
		if !ok {
			return stickererrors.ErrUnknownAction
		}
		pack, err := uc.store.GetPack(ctx, uint(packID))
		if err != nil {
			return err
		}
		return uc.removePack(ctx, ev, pack)
	}

	return stickererrors.ErrUnknownAction
}

func (uc *UseCase) showAdminUsers(ctx context.Context, ev dto.Event, number int) error {
	page := dto.Page{Number: number, Size: consts.AdminPageSize}

	users, total, err := uc.store.ListUsers(ctx, page.Offset(), page.Size)
	if err != nil {
		return err
	}
	page.Total = total

	backRow := dto.Row(button("Назад", consts.ActionAdminPanel))
	if len(users) == 0 {
		uc.reply(ctx, ev, textAdminNoUsers, dto.Keyboard{backRow})
		return nil
	}

	kb := make(dto.Keyboard, 0, len(users)+2)
	for _, u := range users {
		kb = append(kb, dto.Row(button(
			fmt.Sprintf("%s (ID: %d)", u.Username, u.ID),
			withID(consts.ActionAdminUser, u.ID),
		)))
	}
	if row := pageRow(consts.ActionAdminUsers, page); len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, backRow)

	uc.reply(ctx, ev, fmt.Sprintf(textAdminUsers, page.Number+1), kb)
	return nil
}

func (uc *UseCase) showAdminUserPacks(ctx context.Context, ev dto.Event, userID int64) error {
	packs, err := uc.store.ListUserPacks(ctx, userID)
	if err != nil {
		return err
	}

	backRow := dto.Row(button("Назад", withID(consts.ActionAdminUsers, 0)))
	if len(packs) == 0 {
		uc.reply(ctx, ev, textAdminNoPacks, dto.Keyboard{backRow})
		return nil
	}

	kb := packButtons(packs)
	kb = append(kb, backRow)

	uc.reply(ctx, ev, fmt.Sprintf(textAdminUserPacks, userID), kb)
	return nil
}

func (uc *UseCase) showAdminAllPacks(ctx context.Context, ev dto.Event, number int) error {
	page := dto.Page{Number: number, Size: consts.AdminPageSize}

	packs, total, err := uc.store.ListPacks(ctx, page.Offset(), page.Size)
	if err != nil {
		return err
	}
	page.Total = total

	backRow := dto.Row(button("Назад", consts.ActionAdminPanel))
	if len(packs) == 0 {
		uc.reply(ctx, ev, textAdminNoPacks, dto.Keyboard{backRow})
		return nil
	}

	kb := packButtons(packs)
	if row := pageRow(consts.ActionAdminAllPacks, page); len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, backRow)

	uc.reply(ctx, ev, fmt.Sprintf(textAdminAllPacks, page.Number+1), kb)
	return nil
}

func (uc *UseCase) showAdminPack(ctx context.Context, ev dto.Event, packID uint) error {
	pack, err := uc.store.GetPack(ctx, packID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(textAdminPack, pack.PackName, pack.AuthorName, pack.PackLink, yesNo(pack.IsPrivate), pack.Stickers)
	uc.reply(ctx, ev, text, dto.Keyboard{
		dto.Row(dto.Button{Text: "Открыть", URL: pack.PackLink}),
		dto.Row(button("Удалить", withID(consts.ActionAdminDeletePack, int64(pack.ID)))),
		dto.Row(button("Назад", withID(consts.ActionAdminAllPacks, 0))),
	})
	return nil
}

func packButtons(packs []entities.StickerPack) dto.Keyboard {
	kb := make(dto.Keyboard, 0, len(packs)+2)
	for _, p := range packs {
		kb = append(kb, dto.Row(button(
			fmt.Sprintf("%s (ID: %d)", p.PackName, p.ID),
			withID(consts.ActionAdminPack, int64(p.ID)),
		)))
	}
	return kb
}
