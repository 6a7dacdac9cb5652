package business

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/session"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/metrics"
)

type sentMessage struct {
	ChatID   int64
	Text     string
	Kind     entities.MediaKind
	Path     string
	Keyboard dto.Keyboard
	Edited   bool
}

type fakeTransport struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string, kb dto.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{ChatID: chatID, Text: text, Keyboard: kb})
	return nil
}

func (f *fakeTransport) SendMedia(_ context.Context, chatID int64, kind entities.MediaKind, path, caption string, kb dto.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{ChatID: chatID, Text: caption, Kind: kind, Path: path, Keyboard: kb})
	return nil
}

func (f *fakeTransport) EditMessage(_ context.Context, chatID int64, _ int, text string, kb dto.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{ChatID: chatID, Text: text, Keyboard: kb, Edited: true})
	return nil
}

func (f *fakeTransport) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return sentMessage{}
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeTransport) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Text)
	}
	return out
}

type fakeStore struct {
	mu         sync.Mutex
	photo      map[int64]int
	video      map[int64]int
	users      map[int64]string
	admins     map[int64]bool
	media      []entities.UserMedia
	packs      []entities.StickerPack
	messages   []entities.UserMessage
	nextPackID uint
	counterErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		photo:  make(map[int64]int),
		video:  make(map[int64]int),
		users:  make(map[int64]string),
		admins: make(map[int64]bool),
	}
}

func (f *fakeStore) UpsertUser(_ context.Context, userID int64, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID] = username
	return nil
}

func (f *fakeStore) NextPhotoCounter(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counterErr != nil {
		return 0, f.counterErr
	}
	f.photo[userID]++
	return f.photo[userID], nil
}

func (f *fakeStore) NextVideoCounter(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counterErr != nil {
		return 0, f.counterErr
	}
	f.video[userID]++
	return f.video[userID], nil
}

func (f *fakeStore) RecordMediaItem(_ context.Context, userID int64, path, name string, kind entities.MediaKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, entities.UserMedia{UserID: userID, Path: path, Name: name, Kind: kind})
	return nil
}

func (f *fakeStore) RecordPack(_ context.Context, pack *entities.StickerPack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPackID++
	pack.ID = f.nextPackID
	f.packs = append(f.packs, *pack)
	return nil
}

func (f *fakeStore) IsAdmin(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[userID], nil
}

func (f *fakeStore) SetAdmin(_ context.Context, userID int64, admin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[userID] = admin
	return nil
}

func (f *fakeStore) GetPack(_ context.Context, packID uint) (*entities.StickerPack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.packs {
		if p.ID == packID {
			pack := p
			return &pack, nil
		}
	}
	return nil, stickererrors.ErrPackNotFound
}

func (f *fakeStore) DeletePack(_ context.Context, packID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.packs {
		if p.ID == packID {
			f.packs = append(f.packs[:i], f.packs[i+1:]...)
			return nil
		}
	}
	return stickererrors.ErrPackNotFound
}

func (f *fakeStore) ListUserPacks(_ context.Context, userID int64) ([]entities.StickerPack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.StickerPack
	for _, p := range f.packs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPublicPacks(_ context.Context, limit int) ([]entities.StickerPack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.StickerPack
	for _, p := range f.packs {
		if !p.IsPrivate && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPacks(_ context.Context, offset, limit int) ([]entities.StickerPack, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := int64(len(f.packs))
	if offset >= len(f.packs) {
		return nil, total, nil
	}
	end := min(offset+limit, len(f.packs))
	return append([]entities.StickerPack(nil), f.packs[offset:end]...), total, nil
}

func (f *fakeStore) ListUsers(_ context.Context, offset, limit int) ([]entities.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []entities.User
	for id, name := range f.users {
		all = append(all, entities.User{ID: id, Username: name})
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (f *fakeStore) RecordMessage(_ context.Context, msg *entities.UserMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	return nil
}

// fakeTransformer writes placeholder files and derives output names from input names
type fakeTransformer struct {
	mu          sync.Mutex
	probes      map[string]media.VideoProbe
	probeErr    error
	variantsErr error
	trimErr     error
	convertErr  error
	trimmed     []string
}

func newFakeTransformer() *fakeTransformer {
	return &fakeTransformer{probes: make(map[string]media.VideoProbe)}
}

func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

func (f *fakeTransformer) ProduceVariants(_ context.Context, path string, _ entities.MediaKind) ([]string, error) {
	if f.variantsErr != nil {
		return nil, f.variantsErr
	}
	ext := filepath.Ext(path)
	return []string{withSuffix(path, "_v1"+ext), withSuffix(path, "_v2"+ext)}, nil
}

func (f *fakeTransformer) Trim(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trimmed = append(f.trimmed, path)
	if f.trimErr != nil {
		return "", f.trimErr
	}
	return withSuffix(path, "_trimmed.webm"), nil
}

func (f *fakeTransformer) ConvertImageToClip(_ context.Context, path string) (string, error) {
	if f.convertErr != nil {
		return "", f.convertErr
	}
	return withSuffix(path, "_converted.webm"), nil
}

func (f *fakeTransformer) ConvertClipFormat(_ context.Context, path string) (string, error) {
	out := withSuffix(path, ".webm")
	return out, os.WriteFile(out, []byte("webm"), 0o644)
}

func (f *fakeTransformer) NormalizeImage(_ context.Context, _, dst string) error {
	return os.WriteFile(dst, []byte("png"), 0o644)
}

func (f *fakeTransformer) Probe(_ context.Context, path string) (media.VideoProbe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.probeErr != nil {
		return media.VideoProbe{}, f.probeErr
	}
	if p, ok := f.probes[path]; ok {
		return p, nil
	}
	return media.VideoProbe{SizeBytes: 400 * 1024, DurationSeconds: 2, Width: 400, Height: 400}, nil
}

type fakeRegistrar struct {
	mu        sync.Mutex
	created   []string
	firsts    []dto.StickerInput
	added     []dto.StickerInput
	deleted   []string
	createErr error
	deleteErr error
	failAdd   map[string]bool
}

func (f *fakeRegistrar) CreatePack(_ context.Context, _ int64, setName, _ string, first dto.StickerInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, setName)
	f.firsts = append(f.firsts, first)
	return nil
}

func (f *fakeRegistrar) AddItem(_ context.Context, _ int64, _ string, item dto.StickerInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd[item.Path] {
		return errors.New("STICKERSET_INVALID")
	}
	f.added = append(f.added, item)
	return nil
}

func (f *fakeRegistrar) DeletePack(_ context.Context, setName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, setName)
	return nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	downloads []string
	err       error
	panicMsg  string
}

func (f *fakeFetcher) Download(_ context.Context, fileID, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return f.err
	}
	f.downloads = append(f.downloads, fileID)
	return os.WriteFile(dst, []byte(fileID), 0o644)
}

type fakeProducer struct {
	mu     sync.Mutex
	events []*dto.PackEvent
}

func (f *fakeProducer) PublishPackEvent(_ context.Context, event *dto.PackEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type fakeArchive struct {
	mu       sync.Mutex
	archived []string
}

func (f *fakeArchive) Archive(_ context.Context, userID int64, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, path)
	return fmt.Sprintf("%d/%s", userID, filepath.Base(path)), nil
}

type fakeFaults struct {
	mu     sync.Mutex
	faults []error
}

func (f *fakeFaults) Record(userID int64, fault error, _ []byte) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, fault)
	return fmt.Sprintf("logs/%d/%d_1.log", userID, userID), "err-1", nil
}

type fixture struct {
	uc          *UseCase
	transport   *fakeTransport
	store       *fakeStore
	transformer *fakeTransformer
	registrar   *fakeRegistrar
	fetcher     *fakeFetcher
	producer    *fakeProducer
	archive     *fakeArchive
	faults      *fakeFaults
	logs        *bytes.Buffer
}

const (
	testUser = int64(1001)
	testBot  = "test_bot"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		transport:   &fakeTransport{},
		store:       newFakeStore(),
		transformer: newFakeTransformer(),
		registrar:   &fakeRegistrar{failAdd: make(map[string]bool)},
		fetcher:     &fakeFetcher{},
		producer:    &fakeProducer{},
		archive:     &fakeArchive{},
		faults:      &fakeFaults{},
		logs:        &bytes.Buffer{},
	}

	f.uc = NewUseCase(Deps{
		Store:       f.store,
		Transformer: f.transformer,
		Registrar:   f.registrar,
		Fetcher:     f.fetcher,
		Producer:    f.producer,
		Archive:     f.archive,
		Faults:      f.faults,
	}, Options{
		MediaDir:    t.TempDir(),
		BotUsername: testBot,
	}, metrics.GetDefaultMetrics(), zerolog.New(f.logs))
	f.uc.SetSender(f.transport)

	t.Cleanup(func() {
		require.NoError(t, f.uc.Stop(context.Background()))
	})

	return f
}

func (f *fixture) do(ev dto.Event) {
	if ev.UserID == 0 {
		ev.UserID = testUser
	}
	if ev.ChatID == 0 {
		ev.ChatID = ev.UserID
	}
	f.uc.process(context.Background(), ev)
}

func (f *fixture) command(name string) {
	f.do(dto.Event{Kind: dto.EventCommand, Command: name, Username: "alice"})
}

func (f *fixture) action(action string) {
	f.do(dto.Event{Kind: dto.EventAction, Action: action, MessageID: 10, Username: "alice"})
}

func (f *fixture) text(text string) {
	f.do(dto.Event{Kind: dto.EventText, Text: text, Username: "alice"})
}

func (f *fixture) photo(fileID string) {
	f.do(dto.Event{Kind: dto.EventMedia, Username: "alice", Media: &dto.IncomingMedia{FileID: fileID, Kind: dto.IncomingPhoto}})
}

func (f *fixture) video(fileID string) {
	f.do(dto.Event{Kind: dto.EventMedia, Username: "alice", Media: &dto.IncomingMedia{FileID: fileID, Kind: dto.IncomingVideo, MimeType: "video/mp4"}})
}

func (f *fixture) session(t *testing.T) *session.Session {
	t.Helper()
	s, ok := f.uc.sessions.Get(testUser)
	require.True(t, ok, "expected a live session")
	return s
}

func (f *fixture) hasSession() bool {
	_, ok := f.uc.sessions.Get(testUser)
	return ok
}
