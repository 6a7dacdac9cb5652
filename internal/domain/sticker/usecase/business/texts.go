package business

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
)

const (
	textWelcome       = "Добро пожаловать! Выберите действие:"
	textAbout         = "Этот бот создает стикерпаки из ваших изображений и видео."
	textCancelled     = "Создание стикерпака отменено."
	textFault         = "Произошла ошибка. Пожалуйста, попробуйте позже."
	textFaultWithID   = "Произошла ошибка. Пожалуйста, попробуйте позже.\nКод ошибки: %s"
	textSendStickers  = "Присылайте ваши стикеры."
	textSendBatch     = "Присылайте файлы. Когда закончите, нажмите «Готово» или отправьте /done."
	textBatchReceived = "Файл %d получен. Отправьте ещё или нажмите «Готово»."
	textStatus        = "%d стикера получено. Из них %d фото и %d видео. Добавьте ещё файлы или выберите дальнейшее действие:"
	textMediaFailed   = "Не удалось обработать файл. Пожалуйста, попробуйте другой."
	textHints         = `Количество стикеров в паке:
- До 120 статических стикеров в одном наборе.
- До 50 видеостикеров в одном наборе.

Размер стикеров:
- Максимальный размер файла стикера — 512 КБ.
- Размер изображения — 512x512 пикселей.
- Длительность видео — до 3 секунд.

Название стикерпака:
- Длина названия стикерпака может быть до (%d) символов.`

	textEditItem      = "Стикер #%d"
	textEditChoose    = "Введите номер стикера, который хотите заменить:"
	textEditSendNew   = "Отправьте новый файл для стикера #%d."
	textEditReplaced  = "Стикер #%d заменён."
	textReviewItem    = "Файл %d/%d. Оригинал:"
	textReviewVariant = "Вариант %d"
	textReviewChoose  = "Выберите вариант для этого файла:"
	textReviewFailed  = "Не удалось обработать файл %d/%d. Оставьте оригинал или перейдите к другому файлу."

	textEmojiPrompt   = "Пришлите эмодзи для этого стикера %d/%d:"
	textNamePrompt    = "Введите название для стикерпака (только английские буквы и цифры):"
	textPrivacyPrompt = "Сделать стикерпак приватным или общедоступным?"
	textCreating      = "Спасибо! Ваш стикерпак создается."
	textPackCreated   = "Стикерпак \"%s\" успешно создан!\nСсылка: %s"
	textCreateFailed  = "Не удалось создать новый стикерпак."
	textAddFailed     = "Не удалось добавить стикер %d."
	textNothingLeft   = "Не осталось файлов для стикерпака. Пришлите новые фото или видео."

	textInvalidSummary = "%d файлов не соответствуют условиям:"
	textInvalidItem    = "Видео %d/%d: %s"
	textInvalidDone    = "Все видео обработаны."
	textProbeFailed    = "Не удалось прочитать параметры видео."

	textNoPublicPacks = "Публичных стикерпаков нет."
	textPublicPacks   = "Публичные стикерпаки:"
	textNoOwnPacks    = "У вас нет стикерпаков для удаления."
	textChooseDelete  = "Выберите стикерпак для удаления:"
	textPackDeleted   = "Стикерпак с ID %d успешно удален."
	textDeleteFailed  = "Не удалось удалить стикерпак."

	textAdminPanel     = "Админ панель:"
	textAdminNoUsers   = "Нет пользователей для отображения."
	textAdminUsers     = "Пользователи (страница %d):"
	textAdminUserPacks = "Стикерпаки пользователя %d:"
	textAdminNoPacks   = "Нет стикерпаков для отображения."
	textAdminAllPacks  = "Все стикерпаки (страница %d):"
	textAdminPack      = "Название: %s\nАвтор: %s\nСсылка: %s\nПриватный: %s\nСтикеров: %d"
)

// userMessage maps a user-correctable error to its re-prompt
func userMessage(err error) string {
	switch {
	case errors.Is(err, stickererrors.ErrNoSession):
		return "Нажмите /start, чтобы начать."
	case errors.Is(err, stickererrors.ErrNoMedia):
		return "Сначала отправьте хотя бы одно фото или видео."
	case errors.Is(err, stickererrors.ErrUnsupportedMedia):
		return "Пожалуйста, отправьте фото или видео."
	case errors.Is(err, stickererrors.ErrInvalidEmoji):
		return "Пожалуйста, отправьте допустимый эмодзи или нажмите \"Пропустить\"."
	case errors.Is(err, stickererrors.ErrInvalidPackName):
		return "Название должно быть на английском языке и начинаться с буквы. Пожалуйста, введите название снова."
	case errors.Is(err, stickererrors.ErrPackNameTooLong):
		return "Название слишком длинное. Пожалуйста, введите название короче."
	case errors.Is(err, stickererrors.ErrInvalidItemNumber):
		return "Неверный номер стикера. Введите номер из списка."
	case errors.Is(err, stickererrors.ErrKindMismatch):
		return "Тип файла не совпадает с заменяемым стикером. Отправьте файл того же типа."
	case errors.Is(err, stickererrors.ErrInvalidVariant):
		return "Такого варианта нет. Выберите вариант из списка."
	case errors.Is(err, stickererrors.ErrPackNotFound):
		return "Стикерпак не найден."
	case errors.Is(err, stickererrors.ErrNotPackOwner):
		return "Не удалось удалить стикерпак. Убедитесь, что стикерпак существует и принадлежит вам."
	case errors.Is(err, stickererrors.ErrNotAdmin):
		return "Недостаточно прав."
	}
	return "Неизвестная команда."
}

func button(text, action string) dto.Button {
	return dto.Button{Text: text, Action: action}
}

func withID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func backToMainRow() []dto.Button {
	return dto.Row(button("Назад", consts.ActionBackToMain))
}

func statusKeyboard() dto.Keyboard {
	return dto.Keyboard{
		dto.Row(button("Создать стикерпак", consts.ActionCreatePack)),
		dto.Row(button("Редактировать стикеры", consts.ActionEditStickers)),
		dto.Row(button("Обработать изображения или видео", consts.ActionProcessMedia)),
		dto.Row(button("Отмена", consts.ActionCancel)),
	}
}

func batchKeyboard() dto.Keyboard {
	return dto.Keyboard{
		dto.Row(button("Готово", consts.ActionDone), button("Отмена", consts.ActionCancel)),
	}
}

func editDoneKeyboard() dto.Keyboard {
	return dto.Keyboard{
		dto.Row(button("Заменить ещё", consts.ActionEditMore)),
		dto.Row(button("Готово", consts.ActionEditDone)),
	}
}

func emojiKeyboard() dto.Keyboard {
	return dto.Keyboard{
		dto.Row(button("Пропустить", consts.ActionSkipEmoji), button("Пропустить все", consts.ActionSkipAllEmoji)),
	}
}

func privacyKeyboard() dto.Keyboard {
	return dto.Keyboard{
		dto.Row(button("Приватный", consts.ActionPrivate)),
		dto.Row(button("Публичный", consts.ActionPublic)),
		dto.Row(button("Назад", consts.ActionBackToName)),
	}
}

// reviewKeyboard lists variant choices and navigation for the item under cursor
func reviewKeyboard(cursor, total, variants int) dto.Keyboard {
	var kb dto.Keyboard

	var choices []dto.Button
	for k := 0; k < variants; k++ {
		choices = append(choices, button(fmt.Sprintf(textReviewVariant, k+1), fmt.Sprintf("%s%d", consts.ActionSelectVariant, k)))
	}
	if len(choices) > 0 {
		kb = append(kb, choices)
	}
	kb = append(kb, dto.Row(button("Оставить оригинал", consts.ActionKeepOriginal)))

	var nav []dto.Button
	if cursor > 0 {
		nav = append(nav, button("◀", consts.ActionPrevMedia))
	}
	if cursor < total-1 {
		nav = append(nav, button("▶", consts.ActionNextMedia))
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}

	return append(kb,
		dto.Row(button("Создать стикерпак", consts.ActionCreatePack)),
		dto.Row(button("Назад", consts.ActionBackToIntake)),
	)
}

func invalidKeyboard() dto.Keyboard {
	return dto.Keyboard{
		dto.Row(button("◀", consts.ActionPrevInvalid), button("▶", consts.ActionNextInvalid)),
		dto.Row(button("Обрезать это видео", consts.ActionTrimCurrent), button("Обрезать все", consts.ActionTrimAll)),
		dto.Row(button("Удалить это видео", consts.ActionDeleteCurrent)),
	}
}

// pageRow returns "<" and ">" buttons for a paginated listing
func pageRow(prefix string, page dto.Page) []dto.Button {
	var row []dto.Button
	if page.HasPrev() {
		row = append(row, button("<", withID(prefix, int64(page.Number-1))))
	}
	if page.HasNext() {
		row = append(row, button(">", withID(prefix, int64(page.Number+1))))
	}
	return row
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}
