package business

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
)

func TestStartShowsMainMenuAndUpsertsUser(t *testing.T) {
	f := newFixture(t)
	f.store.admins[testUser] = true

	f.command(consts.CommandStart.Name)

	assert.Equal(t, "alice", f.store.users[testUser])
	last := f.transport.last()
	assert.Equal(t, textWelcome, last.Text)
	require.NotEmpty(t, last.Keyboard)
	assert.Equal(t, consts.ActionAdminPanel, last.Keyboard[0][0].Action)
}

func TestSingleModeCountsEverySubmission(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)

	f.photo("p1")
	f.video("v1")
	f.photo("p2")
	f.photo("p3")
	f.video("v2")

	s := f.session(t)
	assert.Equal(t, 5, s.Count())
	assert.Len(t, s.Images, 3)
	assert.Len(t, s.Videos, 2)
	assert.Equal(t, 3, f.store.photo[testUser])
	assert.Equal(t, 2, f.store.video[testUser])
	assert.Len(t, f.store.media, 5)
	assert.Len(t, f.archive.archived, 5)

	assert.Equal(t, fmt.Sprintf(textStatus, 5, 3, 2), f.transport.last().Text)
	assert.Equal(t, fmt.Sprintf("%d_2.png", testUser), filepath.Base(s.Images[1].SourcePath))
	assert.Equal(t, fmt.Sprintf("%d_2.webm", testUser), filepath.Base(s.Videos[1].SourcePath))
}

func TestMultiModeWaitsForDone(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinueBatch)

	f.photo("p1")
	f.photo("p2")
	assert.Equal(t, fmt.Sprintf(textBatchReceived, 2), f.transport.last().Text)

	f.command(consts.CommandDone.Name)
	assert.Equal(t, fmt.Sprintf(textStatus, 2, 2, 0), f.transport.last().Text)
	assert.Equal(t, session.StateProcessingSticker, f.session(t).State())
}

func TestMediaWithoutSessionAsksToStart(t *testing.T) {
	f := newFixture(t)

	f.photo("p1")

	assert.False(t, f.hasSession())
	assert.Empty(t, f.fetcher.downloads)
	assert.Equal(t, "Нажмите /start, чтобы начать.", f.transport.last().Text)
}

func TestUnsupportedDocumentIsRejectedInPlace(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)

	f.do(dto.Event{Kind: dto.EventMedia, Media: &dto.IncomingMedia{FileID: "d1", Kind: dto.IncomingDocument, MimeType: "application/pdf"}})

	s := f.session(t)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, session.StateProcessingSticker, s.State())
	assert.Equal(t, "Пожалуйста, отправьте фото или видео.", f.transport.last().Text)
}

func TestVideoDocumentIsAccepted(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)

	f.do(dto.Event{Kind: dto.EventMedia, Media: &dto.IncomingMedia{FileID: "d1", Kind: dto.IncomingDocument, MimeType: "video/quicktime"}})

	assert.Len(t, f.session(t).Videos, 1)
}

func TestDownloadFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.fetcher.err = errors.New("file is too big")

	f.photo("p1")

	s := f.session(t)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, textMediaFailed, f.transport.last().Text)
	assert.Empty(t, f.faults.faults)
}

func TestSkipAllFillsEveryEmoji(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.photo("p2")
	f.video("v1")

	f.action(consts.ActionCreatePack)
	f.text("🔥")
	f.action(consts.ActionSkipAllEmoji)

	s := f.session(t)
	assert.Equal(t, session.StateAwaitingPackName, s.State())
	emojis := s.Emojis()
	require.Len(t, emojis, s.Count())
	assert.Equal(t, "🔥", emojis[0])
	for _, e := range emojis[1:] {
		assert.True(t, media.IsEmoji(e), "random emoji %q", e)
	}
	assert.Equal(t, textNamePrompt, f.transport.last().Text)
}

func TestInvalidEmojiDoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.photo("p2")
	f.action(consts.ActionCreatePack)

	f.text("abc")

	s := f.session(t)
	stage, ok := s.Stage.(*session.EmojiStage)
	require.True(t, ok)
	assert.Equal(t, 0, stage.Cursor)
	assert.Empty(t, s.Emojis())
	assert.Contains(t, f.transport.last().Text, "допустимый эмодзи")

	f.action(consts.ActionSkipEmoji)
	assert.Equal(t, 1, stage.Cursor)
	assert.Len(t, s.Emojis(), 1)
	assert.Equal(t, fmt.Sprintf(textEmojiPrompt, 2, 2), f.transport.last().Text)
}

func TestPackNameIsValidatedBeforePrivacy(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)

	f.text("Котики")
	s := f.session(t)
	assert.Equal(t, session.StateAwaitingPackName, s.State())
	assert.Empty(t, s.PackName)

	f.text(strings.Repeat("a", MaxPackNameLength(testBot)+1))
	assert.Equal(t, session.StateAwaitingPackName, s.State())

	f.text("Cats")
	assert.Equal(t, session.StateAwaitingPrivacy, s.State())
	assert.Equal(t, "Cats", s.PackName)
	assert.Equal(t, "alice", s.AuthorName)

	f.action(consts.ActionBackToName)
	assert.Equal(t, session.StateAwaitingPackName, s.State())
}

func TestFullFlowRegistersPack(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.photo("p2")
	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("cats")
	f.action(consts.ActionPublic)

	assert.False(t, f.hasSession())
	require.Equal(t, []string{"cats_static_by_test_bot"}, f.registrar.created)
	assert.Equal(t, consts.FormatStatic, f.registrar.firsts[0].Format)
	assert.Len(t, f.registrar.added, 1)

	require.Len(t, f.store.packs, 1)
	pack := f.store.packs[0]
	assert.Equal(t, "cats", pack.PackName)
	assert.Equal(t, "cats_static_by_test_bot", pack.SetName)
	assert.Equal(t, "https://t.me/addstickers/cats_static_by_test_bot", pack.PackLink)
	assert.False(t, pack.IsPrivate)
	assert.Equal(t, 2, pack.Stickers)
	assert.Equal(t, "alice", pack.AuthorName)

	require.Len(t, f.producer.events, 1)
	assert.Equal(t, dto.PackEventCreated, f.producer.events[0].Type)

	assert.Equal(t, fmt.Sprintf(textPackCreated, "cats", pack.PackLink), f.transport.last().Text)
}

func TestCreateFailureAbortsWithMessage(t *testing.T) {
	f := newFixture(t)
	f.registrar.createErr = errors.New("PEER_ID_INVALID")
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("cats")
	f.action(consts.ActionPrivate)

	assert.False(t, f.hasSession())
	assert.Empty(t, f.store.packs)
	assert.Empty(t, f.faults.faults)
	assert.Equal(t, textCreateFailed, f.transport.last().Text)
}

func TestAddFailureIsReportedAndSkipped(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.photo("p2")
	f.photo("p3")
	s := f.session(t)
	f.registrar.failAdd[s.Images[1].Path()] = true

	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("cats")
	f.action(consts.ActionPrivate)

	require.Len(t, f.store.packs, 1)
	assert.Equal(t, 2, f.store.packs[0].Stickers)
	assert.Contains(t, f.transport.texts(), fmt.Sprintf(textAddFailed, 2))
}

func TestInvalidVideoEntersReviewThenTrimAssembles(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.video("v1")
	s := f.session(t)
	long := s.Videos[0].Path()
	f.transformer.probes[long] = media.VideoProbe{SizeBytes: 400 * 1024, DurationSeconds: 4, Width: 400, Height: 400}

	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("clips")
	f.action(consts.ActionPrivate)

	stage, ok := s.Stage.(*session.InvalidReviewStage)
	require.True(t, ok)
	require.Len(t, stage.Entries, 1)
	assert.Contains(t, stage.Entries[0].Reason, "4.00")
	assert.Empty(t, s.Videos)
	assert.Empty(t, f.registrar.created)
	assert.Contains(t, f.transport.texts(), fmt.Sprintf(textInvalidSummary, 1)+"\n"+filepath.Base(long)+": "+stage.Entries[0].Reason)

	f.action(consts.ActionTrimCurrent)

	assert.Equal(t, []string{long}, f.transformer.trimmed)
	assert.False(t, f.hasSession())
	require.Len(t, f.registrar.firsts, 1)
	assert.Equal(t, withSuffix(long, "_trimmed.webm"), f.registrar.firsts[0].Path)
	assert.Equal(t, consts.FormatVideo, f.registrar.firsts[0].Format)
	assert.Contains(t, f.transport.texts(), textInvalidDone)
}

func TestInvalidReviewCursorIsClamped(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.video("v1")
	f.video("v2")
	f.transformer.probeErr = errors.New("moov atom not found")

	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("clips")
	f.action(consts.ActionPrivate)

	s := f.session(t)
	stage, ok := s.Stage.(*session.InvalidReviewStage)
	require.True(t, ok)
	require.Len(t, stage.Entries, 2)

	f.action(consts.ActionPrevInvalid)
	assert.Equal(t, 0, stage.Cursor)

	f.action(consts.ActionNextInvalid)
	assert.Equal(t, 1, stage.Cursor)

	f.action(consts.ActionNextInvalid)
	assert.Equal(t, 1, stage.Cursor)
}

func TestFailedTrimStillLeavesReviewQueue(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.video("v1")
	f.video("v2")
	s := f.session(t)
	bad := s.Videos[0].Path()
	f.transformer.probes[bad] = media.VideoProbe{SizeBytes: 600 * 1024, DurationSeconds: 2, Width: 400, Height: 400}
	f.transformer.trimErr = errors.New("ffmpeg exited with 1")

	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("clips")
	f.action(consts.ActionPrivate)

	stage, ok := s.Stage.(*session.InvalidReviewStage)
	require.True(t, ok)
	require.Len(t, stage.Entries, 1)

	f.action(consts.ActionTrimAll)

	// The untrimmed clip is revalidated and flagged again
	stage, ok = s.Stage.(*session.InvalidReviewStage)
	require.True(t, ok)
	require.Len(t, stage.Entries, 1)
	assert.Equal(t, bad, stage.Entries[0].Item.Path())

	f.action(consts.ActionDeleteCurrent)

	assert.False(t, f.hasSession())
	require.Len(t, f.store.packs, 1)
	assert.Equal(t, 1, f.store.packs[0].Stickers)
}

func TestDeletingEveryInvalidVideoReturnsToIntake(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.video("v1")
	f.transformer.probeErr = errors.New("invalid data found")

	f.action(consts.ActionCreatePack)
	f.action(consts.ActionSkipAllEmoji)
	f.text("clips")
	f.action(consts.ActionPrivate)
	f.action(consts.ActionDeleteCurrent)

	s := f.session(t)
	assert.Equal(t, session.StateProcessingSticker, s.State())
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, textNothingLeft, f.transport.last().Text)
}

func TestCancelTwiceLeavesNoSession(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")

	f.command(consts.CommandCancel.Name)
	f.command(consts.CommandCancel.Name)

	assert.False(t, f.hasSession())
	assert.Empty(t, f.faults.faults)
	texts := f.transport.texts()
	assert.Equal(t, textCancelled, texts[len(texts)-1])
	assert.Equal(t, textCancelled, texts[len(texts)-2])
}

func TestFaultResetsSessionAndRecordsMessage(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.store.counterErr = errors.New("connection refused")

	f.photo("p1")

	assert.False(t, f.hasSession())
	require.Len(t, f.faults.faults, 1)
	require.Len(t, f.store.messages, 1)
	msg := f.store.messages[0]
	assert.True(t, msg.HasError)
	assert.Equal(t, fmt.Sprintf("logs/%d/%d_1.log", testUser, testUser), msg.ErrorLogLink)
	assert.Equal(t, "media:p1", msg.MessageText)
	assert.Equal(t, fmt.Sprintf(textFaultWithID, "err-1"), f.transport.last().Text)
}

func TestPanicIsRecoveredAsFault(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.fetcher.panicMsg = "boom"

	f.photo("p1")

	assert.False(t, f.hasSession())
	require.Len(t, f.faults.faults, 1)
	assert.Contains(t, f.faults.faults[0].Error(), "boom")
}

func TestEditReplacesItemOfSameKind(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.photo("p2")
	s := f.session(t)
	before := s.Images[1].SourcePath

	f.action(consts.ActionEditStickers)
	stage, ok := s.Stage.(*session.EditStage)
	require.True(t, ok)

	f.text("5")
	assert.Equal(t, -1, stage.Target)

	f.text("2")
	assert.Equal(t, 1, stage.Target)

	f.video("v1")
	assert.Equal(t, before, s.Images[1].SourcePath)
	assert.Equal(t, 0, f.store.video[testUser])

	f.photo("p3")
	assert.NotEqual(t, before, s.Images[1].SourcePath)
	assert.Equal(t, -1, stage.Target)
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, fmt.Sprintf(textEditReplaced, 2), f.transport.last().Text)

	f.action(consts.ActionEditDone)
	assert.Equal(t, session.StateAwaitingEmoji, s.State())
}

func TestVariantSelectionAdvancesToEmoji(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.photo("p2")
	s := f.session(t)

	f.action(consts.ActionProcessMedia)
	stage, ok := s.Stage.(*session.VariantReviewStage)
	require.True(t, ok)
	require.Len(t, s.Images[0].VariantPaths, 2)

	f.action(consts.ActionPrevMedia)
	assert.Equal(t, 0, stage.Cursor)

	f.action(consts.ActionSelectVariant + "5")
	assert.Equal(t, 0, stage.Cursor)

	f.action(consts.ActionSelectVariant + "1")
	assert.Equal(t, s.Images[0].VariantPaths[1], s.Images[0].Path())
	assert.Equal(t, 1, stage.Cursor)

	f.action(consts.ActionKeepOriginal)
	assert.Equal(t, s.Images[1].SourcePath, s.Images[1].Path())
	assert.Equal(t, session.StateAwaitingEmoji, s.State())
	assert.Equal(t, s.Images[0].VariantPaths[1], f.transport.last().Path)
}

func TestVariantFailureOffersOriginal(t *testing.T) {
	f := newFixture(t)
	f.action(consts.ActionContinue)
	f.photo("p1")
	f.transformer.variantsErr = errors.New("rembg unavailable")

	f.action(consts.ActionProcessMedia)

	s := f.session(t)
	assert.Equal(t, session.StateProcessingMedia, s.State())
	assert.Equal(t, fmt.Sprintf(textReviewFailed, 1, 1), f.transport.last().Text)

	f.action(consts.ActionKeepOriginal)
	assert.Equal(t, session.StateAwaitingEmoji, s.State())
}

func TestDeleteOwnPackChecksOwnership(t *testing.T) {
	f := newFixture(t)
	f.store.packs = []entities.StickerPack{
		{ID: 1, UserID: testUser, PackName: "mine", SetName: "mine_static_by_test_bot"},
		{ID: 2, UserID: 7, PackName: "theirs", SetName: "theirs_static_by_test_bot"},
	}

	f.action(consts.ActionConfirmDelete + "2")
	assert.Empty(t, f.registrar.deleted)
	assert.Len(t, f.store.packs, 2)

	f.action(consts.ActionConfirmDelete + "1")
	assert.Equal(t, []string{"mine_static_by_test_bot"}, f.registrar.deleted)
	require.Len(t, f.store.packs, 1)
	assert.Equal(t, uint(2), f.store.packs[0].ID)
	require.Len(t, f.producer.events, 1)
	assert.Equal(t, dto.PackEventDeleted, f.producer.events[0].Type)
	assert.True(t, f.transport.last().Edited)
}

func TestDeletePackRemoteFailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.store.packs = []entities.StickerPack{
		{ID: 1, UserID: testUser, PackName: "mine", SetName: "mine_static_by_test_bot"},
	}
	f.registrar.deleteErr = fmt.Errorf("failed to delete sticker set %s: %w", "mine_static_by_test_bot", errors.New("Bad Request: STICKERSET_INVALID"))

	f.action(consts.ActionConfirmDelete + "1")

	assert.Empty(t, f.faults.faults)
	assert.Len(t, f.store.packs, 1)
	assert.Empty(t, f.producer.events)
	assert.Equal(t, textDeleteFailed, f.transport.last().Text)
}

func TestAdminScreensRequireAdmin(t *testing.T) {
	f := newFixture(t)

	f.action(consts.ActionAdminPanel)
	assert.Equal(t, "Недостаточно прав.", f.transport.last().Text)

	f.store.admins[testUser] = true
	for i := 0; i < 12; i++ {
		f.store.packs = append(f.store.packs, entities.StickerPack{ID: uint(i + 1), UserID: 7, PackName: fmt.Sprintf("p%d", i)})
	}

	f.action(consts.ActionAdminAllPacks + "0")
	last := f.transport.last()
	assert.Equal(t, fmt.Sprintf(textAdminAllPacks, 1), last.Text)
	require.Len(t, last.Keyboard, consts.AdminPageSize+2)
	assert.Equal(t, consts.ActionAdminAllPacks+"1", last.Keyboard[consts.AdminPageSize][0].Action)

	f.action(consts.ActionAdminDeletePack + "3")
	assert.Len(t, f.store.packs, 11)
}

func TestHandleEventProcessesInOrder(t *testing.T) {
	f := newFixture(t)

	f.uc.HandleEvent(dto.Event{Kind: dto.EventAction, Action: consts.ActionContinue, UserID: testUser, ChatID: testUser})
	for i := 0; i < 4; i++ {
		f.uc.HandleEvent(dto.Event{
			Kind:   dto.EventMedia,
			UserID: testUser,
			ChatID: testUser,
			Media:  &dto.IncomingMedia{FileID: fmt.Sprintf("p%d", i), Kind: dto.IncomingPhoto},
		})
	}
	f.uc.Wait()

	assert.Equal(t, 4, f.session(t).Count())
	assert.Equal(t, []string{"p0", "p1", "p2", "p3"}, f.fetcher.downloads)
}
