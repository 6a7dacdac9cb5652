// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/usecase/business"
)

// Constants for Telegram API
const (
	MaxMessageLength = 4096
	RequestTimeout   = 30 * time.Second
	UploadTimeout    = 2 * time.Minute
)

type eventHandler interface {
	HandleEvent(ev dto.Event)
}

// Handlers converts updates into domain events
// Implements deps.Transport interface
type Handlers struct {
	uc     eventHandler
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *business.UseCase, bot *tgbot.Bot, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		bot:    bot,
		logger: logger.With().Str("component", "telegram-handlers").Logger(),
	}
}

// HandleMessage handles commands, text and media messages
func (h *Handlers) HandleMessage(_ context.Context, _ *tgbot.Bot, update *models.Update) {
	ev, ok := MessageEvent(update.Message)
	if !ok {
		return
	}

	h.logger.Debug().
		Int64("user_id", ev.UserID).
		Str("kind", ev.Kind.String()).
		Msg("Telegram message received")

	h.uc.HandleEvent(ev)
}

// HandleCallback handles inline keyboard presses
func (h *Handlers) HandleCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}

	answerCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := bot.AnswerCallbackQuery(answerCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	}); err != nil {
		h.logger.Warn().Err(err).Int64("user_id", query.From.ID).Msg("Failed to answer callback query")
	}

	ev, ok := CallbackEvent(query)
	if !ok {
		return
	}

	h.logger.Debug().
		Int64("user_id", ev.UserID).
		Str("action", ev.Action).
		Msg("Telegram callback received")

	h.uc.HandleEvent(ev)
}

// SendText implements deps.Transport interface
func (h *Handlers) SendText(ctx context.Context, chatID int64, text string, kb dto.Keyboard) error {
	if text == "" {
		return fmt.Errorf("message text cannot be empty")
	}

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.SendMessage(msgCtx, &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        truncate(text),
		ReplyMarkup: ReplyMarkup(kb),
	})
	if err != nil {
		return h.handleSendError(chatID, err)
	}

	h.logger.Debug().Int64("chat_id", chatID).Int("text_length", len(text)).Msg("Message sent")
	return nil
}

// SendMedia implements deps.Transport interface
func (h *Handlers) SendMedia(ctx context.Context, chatID int64, kind entities.MediaKind, path, caption string, kb dto.Keyboard) error {
	data, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open media: %w", err)
	}
	defer data.Close()

	msgCtx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	upload := &models.InputFileUpload{Filename: filepath.Base(path), Data: data}

	switch kind {
	case entities.MediaKindVideo:
		_, err = h.bot.SendVideo(msgCtx, &tgbot.SendVideoParams{
			ChatID:      chatID,
			Video:       upload,
			Caption:     caption,
			ReplyMarkup: ReplyMarkup(kb),
		})
	default:
		_, err = h.bot.SendPhoto(msgCtx, &tgbot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       upload,
			Caption:     caption,
			ReplyMarkup: ReplyMarkup(kb),
		})
	}
	if err != nil {
		return h.handleSendError(chatID, err)
	}

	h.logger.Debug().Int64("chat_id", chatID).Str("kind", string(kind)).Str("path", path).Msg("Media sent")
	return nil
}

// EditMessage implements deps.Transport interface
func (h *Handlers) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb dto.Keyboard) error {
	if text == "" {
		return fmt.Errorf("message text cannot be empty")
	}

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.EditMessageText(msgCtx, &tgbot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        truncate(text),
		ReplyMarkup: ReplyMarkup(kb),
	})
	if err != nil {
		h.logger.Warn().Int64("chat_id", chatID).Int("message_id", messageID).Err(err).Msg("Failed to edit message text")
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

func (h *Handlers) handleSendError(chatID int64, err error) error {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "Forbidden"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("User blocked the bot or chat not found")
		return fmt.Errorf("user blocked the bot or chat not found")

	case strings.Contains(errorMsg, "Too Many Requests"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
		return fmt.Errorf("rate limit exceeded, please try again later")

	default:
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Unknown error while sending message")
		return fmt.Errorf("failed to send message: %w", err)
	}
}

// MessageEvent converts a message into a domain event. ok is false for
// messages the conversation ignores.
func MessageEvent(msg *models.Message) (dto.Event, bool) {
	if msg == nil || msg.From == nil {
		return dto.Event{}, false
	}

	ev := dto.Event{
		UserID:   msg.From.ID,
		ChatID:   msg.Chat.ID,
		Username: msg.From.Username,
		FullName: strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
	}

	switch {
	case len(msg.Photo) > 0:
		// Sizes are ordered from smallest to largest
		ev.Kind = dto.EventMedia
		ev.Media = &dto.IncomingMedia{FileID: msg.Photo[len(msg.Photo)-1].FileID, Kind: dto.IncomingPhoto}
	case msg.Video != nil:
		ev.Kind = dto.EventMedia
		ev.Media = &dto.IncomingMedia{FileID: msg.Video.FileID, Kind: dto.IncomingVideo, MimeType: msg.Video.MimeType}
	case msg.Document != nil:
		ev.Kind = dto.EventMedia
		ev.Media = &dto.IncomingMedia{FileID: msg.Document.FileID, Kind: dto.IncomingDocument, MimeType: msg.Document.MimeType}
	case strings.HasPrefix(msg.Text, "/"):
		ev.Kind = dto.EventCommand
		ev.Command = commandName(msg.Text)
	case msg.Text != "":
		ev.Kind = dto.EventText
		ev.Text = strings.TrimSpace(msg.Text)
	default:
		return dto.Event{}, false
	}

	return ev, true
}

// CallbackEvent converts an inline keyboard press into a domain event
func CallbackEvent(query *models.CallbackQuery) (dto.Event, bool) {
	if query == nil || query.Data == "" {
		return dto.Event{}, false
	}

	ev := dto.Event{
		Kind:     dto.EventAction,
		UserID:   query.From.ID,
		ChatID:   query.From.ID,
		Username: query.From.Username,
		FullName: strings.TrimSpace(query.From.FirstName + " " + query.From.LastName),
		Action:   query.Data,
	}

	if msg := query.Message.Message; msg != nil {
		ev.ChatID = msg.Chat.ID
		ev.MessageID = msg.ID
	}

	return ev, true
}

// ReplyMarkup converts a keyboard into an inline markup. Empty keyboards yield nil.
func ReplyMarkup(kb dto.Keyboard) models.ReplyMarkup {
	if len(kb) == 0 {
		return nil
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			button := models.InlineKeyboardButton{Text: b.Text}
			if b.URL != "" {
				button.URL = b.URL
			} else {
				button.CallbackData = b.Action
			}
			buttons = append(buttons, button)
		}
		rows = append(rows, buttons)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// commandName strips the slash, the bot mention and any arguments
func commandName(text string) string {
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// truncate cuts text to the message limit on a rune boundary
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) > MaxMessageLength {
		return string(runes[:MaxMessageLength-3]) + "..."
	}
	return text
}
