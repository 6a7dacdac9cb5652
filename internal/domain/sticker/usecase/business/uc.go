// Package business contains the conversation logic of the sticker domain
package business

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/metrics"
	pkgerrors "github.com/jsfrau/telegram-stickers-bot/pkg/errors"
)

// Deps groups the collaborators of the use case
type Deps struct {
	Store       deps.Store
	Transformer deps.Transformer
	Registrar   deps.Registrar
	Fetcher     deps.MediaFetcher
	Producer    deps.PackEventProducer
	Archive     deps.MediaArchive
	Faults      deps.FaultRecorder
}

// Options tunes the use case
type Options struct {
	// MediaDir is the root for images/<uid> and videos/<uid>
	MediaDir string
	// BotUsername is the suffix of every sticker set name
	BotUsername string
	// AddInterval is the pause between sticker additions
	AddInterval time.Duration
}

// UseCase drives the per-user conversation
type UseCase struct {
	store       deps.Store
	transformer deps.Transformer
	registrar   deps.Registrar
	fetcher     deps.MediaFetcher
	producer    deps.PackEventProducer
	archive     deps.MediaArchive
	faults      deps.FaultRecorder
	sender      deps.Transport

	sessions   *session.Table
	dispatcher *session.Dispatcher[dto.Event]
	assembler  *Assembler
	opts       Options
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	cancel context.CancelFunc
}

// NewUseCase creates a new UseCase instance
// Note: sender is not passed here to break cyclic dependency
// Use SetSender after creating the Telegram handlers
func NewUseCase(d Deps, opts Options, m *metrics.Metrics, logger zerolog.Logger) *UseCase {
	ctx, cancel := context.WithCancel(context.Background())

	uc := &UseCase{
		store:       d.Store,
		transformer: d.Transformer,
		registrar:   d.Registrar,
		fetcher:     d.Fetcher,
		producer:    d.Producer,
		archive:     d.Archive,
		faults:      d.Faults,
		sessions:    session.NewTable(),
		opts:        opts,
		metrics:     m,
		logger:      logger,
		cancel:      cancel,
	}
	uc.assembler = NewAssembler(d.Transformer, d.Registrar, opts.BotUsername, opts.AddInterval, m, logger)
	uc.dispatcher = session.NewDispatcher(ctx, uc.process)

	return uc
}

// SetSender sets the Transport after construction
// This is called by fx.Invoke to resolve cyclic dependency
func (uc *UseCase) SetSender(sender deps.Transport) {
	uc.sender = sender
}

// HandleEvent queues an inbound event. Events of one user are handled strictly in order.
func (uc *UseCase) HandleEvent(ev dto.Event) {
	uc.metrics.RecordEvent(ev.Kind.String())
	uc.dispatcher.Submit(ev.UserID, ev)
}

// RunJanitor discards sessions idle for longer than idle until ctx is done
func (uc *UseCase) RunJanitor(ctx context.Context, idle time.Duration) {
	uc.sessions.RunJanitor(ctx, consts.JanitorInterval, idle, uc.logger)
}

// Wait blocks until every queued event has been handled
func (uc *UseCase) Wait() {
	uc.dispatcher.Wait()
}

// Stop waits for in-flight events and aborts them when ctx expires first
func (uc *UseCase) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.dispatcher.Wait()
		close(done)
	}()

	defer uc.cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// process is the single entry point of the per-user worker. Validation errors
// become a re-prompt in the same state, anything else reaches fault.
func (uc *UseCase) process(ctx context.Context, ev dto.Event) {
	defer func() {
		if r := recover(); r != nil {
			uc.fault(ctx, ev, fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	err := uc.handle(ctx, ev)
	uc.metrics.SetActiveSessions(uc.sessions.Len())
	if err == nil {
		return
	}

	if isUserError(err) {
		uc.logger.Debug().
			Err(err).
			Int64("user_id", ev.UserID).
			Str("event", ev.Kind.String()).
			Msg("Rejected user input")
		uc.send(ctx, ev.ChatID, userMessage(err), nil)
		return
	}

	uc.fault(ctx, ev, err, debug.Stack())
}

// handle routes the event by kind, then by the stage of the user's session
func (uc *UseCase) handle(ctx context.Context, ev dto.Event) error {
	switch ev.Kind {
	case dto.EventCommand:
		return uc.handleCommand(ctx, ev)
	case dto.EventAction:
		if handled, err := uc.handleGlobalAction(ctx, ev); handled {
			return err
		}
	}

	s, ok := uc.sessions.Get(ev.UserID)
	if !ok {
		return stickererrors.ErrNoSession
	}

	switch stage := s.Stage.(type) {
	case *session.IntakeStage:
		return uc.handleIntake(ctx, s, ev)
	case *session.EditStage:
		return uc.handleEdit(ctx, s, stage, ev)
	case *session.VariantReviewStage:
		return uc.handleVariantReview(ctx, s, stage, ev)
	case *session.EmojiStage:
		return uc.handleEmoji(ctx, s, stage, ev)
	case *session.NameStage:
		return uc.handleName(ctx, s, ev)
	case *session.PrivacyStage:
		return uc.handlePrivacy(ctx, s, ev)
	case *session.InvalidReviewStage:
		return uc.handleInvalidReview(ctx, s, stage, ev)
	}

	return stickererrors.ErrUnknownAction
}

func (uc *UseCase) handleCommand(ctx context.Context, ev dto.Event) error {
	switch ev.Command {
	case consts.CommandStart.Name:
		uc.sessions.Reset(ev.UserID)
		if err := uc.store.UpsertUser(ctx, ev.UserID, ev.AuthorName()); err != nil {
			return err
		}
		return uc.showMainMenu(ctx, ev)
	case consts.CommandCancel.Name:
		uc.cancelSubmission(ctx, ev)
		return nil
	case consts.CommandDone.Name:
		s, ok := uc.sessions.Get(ev.UserID)
		if !ok {
			return stickererrors.ErrNoSession
		}
		if _, intake := s.Stage.(*session.IntakeStage); !intake {
			return stickererrors.ErrUnknownAction
		}
		return uc.finishIntake(ctx, s)
	}

	return stickererrors.ErrUnknownAction
}

// cancelSubmission clears the session. Cancelling without a session is a no-op with the same reply.
func (uc *UseCase) cancelSubmission(ctx context.Context, ev dto.Event) {
	uc.sessions.Reset(ev.UserID)
	uc.logger.Info().Int64("user_id", ev.UserID).Msg("Submission cancelled")
	uc.reply(ctx, ev, textCancelled, nil)
}

// fault is the global handler for anything that is not a user-correctable error
func (uc *UseCase) fault(ctx context.Context, ev dto.Event, err error, stack []byte) {
	uc.metrics.RecordFault()
	uc.sessions.Reset(ev.UserID)

	path, errorID, recErr := uc.faults.Record(ev.UserID, err, stack)
	if recErr != nil {
		uc.logger.Warn().Err(recErr).Int64("user_id", ev.UserID).Msg("Failed to write error record")
	}

	uc.logger.Error().
		Err(err).
		Int64("user_id", ev.UserID).
		Str("event", ev.Kind.String()).
		Str("error_id", errorID).
		Str("error_log", path).
		Msg("Unhandled error, conversation reset")

	msg := &entities.UserMessage{
		UserID:       ev.UserID,
		MessageText:  eventText(ev),
		HasError:     true,
		ErrorLogLink: path,
	}
	if err := uc.store.RecordMessage(ctx, msg); err != nil {
		uc.logger.Warn().Err(err).Int64("user_id", ev.UserID).Msg("Failed to record user message")
	}

	text := textFault
	if errorID != "" {
		text = fmt.Sprintf(textFaultWithID, errorID)
	}
	uc.send(ctx, ev.ChatID, text, nil)
}

func isUserError(err error) bool {
	return pkgerrors.IsValidationError(err) ||
		pkgerrors.IsNotFoundError(err) ||
		pkgerrors.IsPermissionError(err)
}

func eventText(ev dto.Event) string {
	switch ev.Kind {
	case dto.EventCommand:
		return "/" + ev.Command
	case dto.EventText:
		return ev.Text
	case dto.EventAction:
		return ev.Action
	case dto.EventMedia:
		if ev.Media != nil {
			return "media:" + ev.Media.FileID
		}
	}
	return ""
}

// send delivers a new text message. Transport failures are logged and never change state.
func (uc *UseCase) send(ctx context.Context, chatID int64, text string, kb dto.Keyboard) {
	if uc.sender == nil {
		uc.logger.Error().Msg("Transport is not set")
		return
	}
	if err := uc.sender.SendText(ctx, chatID, text, kb); err != nil {
		uc.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// sendMedia uploads a local file with a caption
func (uc *UseCase) sendMedia(ctx context.Context, chatID int64, kind entities.MediaKind, path, caption string, kb dto.Keyboard) {
	if uc.sender == nil {
		uc.logger.Error().Msg("Transport is not set")
		return
	}
	if err := uc.sender.SendMedia(ctx, chatID, kind, path, caption, kb); err != nil {
		uc.logger.Warn().Err(err).Int64("chat_id", chatID).Str("path", path).Msg("Failed to send media")
	}
}

// reply edits the message carrying the pressed button, or sends a new one
func (uc *UseCase) reply(ctx context.Context, ev dto.Event, text string, kb dto.Keyboard) {
	if ev.Kind == dto.EventAction && ev.MessageID != 0 && uc.sender != nil {
		err := uc.sender.EditMessage(ctx, ev.ChatID, ev.MessageID, text, kb)
		if err == nil {
			return
		}
		uc.logger.Debug().Err(err).Int64("chat_id", ev.ChatID).Msg("Edit failed, sending new message")
	}
	uc.send(ctx, ev.ChatID, text, kb)
}

// publish emits a pack event. Publishing is best-effort.
func (uc *UseCase) publish(ctx context.Context, eventType string, pack *entities.StickerPack) {
	event := &dto.PackEvent{
		Type:      eventType,
		PackID:    pack.ID,
		UserID:    pack.UserID,
		PackName:  pack.PackName,
		SetName:   pack.SetName,
		PackLink:  pack.PackLink,
		IsPrivate: pack.IsPrivate,
		Stickers:  pack.Stickers,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := uc.producer.PublishPackEvent(ctx, event); err != nil {
		uc.logger.Warn().
			Err(err).
			Str("type", eventType).
			Uint("pack_id", pack.ID).
			Msg("Failed to publish pack event")
	}
}

// transformCtx bounds a single transformer call
func transformCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, consts.TransformTimeout)
}

func isCollaboratorFailure(err error) bool {
	return errors.Is(err, stickererrors.ErrTransformation) || errors.Is(err, stickererrors.ErrDownload)
}
