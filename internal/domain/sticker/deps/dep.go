// Package deps contains interface definitions for the sticker domain dependencies
package deps

import (
	"context"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
)

// Transport defines interface for prompting users via Telegram.
// It is used to break the cyclic dependency between UseCase and TelegramHandlers.
type Transport interface {
	// SendText sends a text message with an optional keyboard
	SendText(ctx context.Context, chatID int64, text string, kb dto.Keyboard) error

	// SendMedia uploads a local file as photo or video with caption and keyboard
	SendMedia(ctx context.Context, chatID int64, kind entities.MediaKind, path, caption string, kb dto.Keyboard) error

	// EditMessage replaces the text and keyboard of a previously sent message
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb dto.Keyboard) error
}

// MediaFetcher downloads platform files to local disk
type MediaFetcher interface {
	// Download stores the file identified by fileID at dst
	Download(ctx context.Context, fileID, dst string) error
}

// Store defines the persistent record store
type Store interface {
	// UpsertUser creates the user row if missing and refreshes the username
	UpsertUser(ctx context.Context, userID int64, username string) error

	// NextPhotoCounter atomically increments and returns the user's photo counter
	NextPhotoCounter(ctx context.Context, userID int64) (int, error)

	// NextVideoCounter atomically increments and returns the user's video counter
	NextVideoCounter(ctx context.Context, userID int64) (int, error)

	// RecordMediaItem stores a reference to an accepted original
	RecordMediaItem(ctx context.Context, userID int64, path, name string, kind entities.MediaKind) error

	// RecordPack persists a registered pack and fills its ID
	RecordPack(ctx context.Context, pack *entities.StickerPack) error

	// IsAdmin reports whether the user has admin rights
	IsAdmin(ctx context.Context, userID int64) (bool, error)

	// SetAdmin grants or revokes admin rights
	SetAdmin(ctx context.Context, userID int64, admin bool) error

	// GetPack returns a pack by ID
	GetPack(ctx context.Context, packID uint) (*entities.StickerPack, error)

	// DeletePack removes a pack record
	DeletePack(ctx context.Context, packID uint) error

	// ListUserPacks returns all packs owned by the user
	ListUserPacks(ctx context.Context, userID int64) ([]entities.StickerPack, error)

	// ListPublicPacks returns up to limit public packs, newest first
	ListPublicPacks(ctx context.Context, limit int) ([]entities.StickerPack, error)

	// ListPacks returns one page of all packs and the total count
	ListPacks(ctx context.Context, offset, limit int) ([]entities.StickerPack, int64, error)

	// ListUsers returns one page of users and the total count
	ListUsers(ctx context.Context, offset, limit int) ([]entities.User, int64, error)

	// RecordMessage stores a per-user message log row
	RecordMessage(ctx context.Context, msg *entities.UserMessage) error
}

// Transformer is the media transformation service
type Transformer interface {
	// ProduceVariants returns candidate transformed outputs of an item
	ProduceVariants(ctx context.Context, path string, kind entities.MediaKind) ([]string, error)

	// Trim cuts a clip down to the allowed duration and returns the new path
	Trim(ctx context.Context, path string) (string, error)

	// ConvertImageToClip renders a still image as a short clip and returns its path
	ConvertImageToClip(ctx context.Context, path string) (string, error)

	// ConvertClipFormat transcodes an uploaded clip into the sticker clip format
	ConvertClipFormat(ctx context.Context, path string) (string, error)

	// NormalizeImage resizes an uploaded photo into a sticker-sized PNG at dst
	NormalizeImage(ctx context.Context, src, dst string) error

	// Probe measures a clip for validation
	Probe(ctx context.Context, path string) (media.VideoProbe, error)
}

// Registrar is the remote sticker set registration service
type Registrar interface {
	// CreatePack registers a new set with its first sticker
	CreatePack(ctx context.Context, ownerID int64, setName, title string, first dto.StickerInput) error

	// AddItem appends one sticker to an existing set
	AddItem(ctx context.Context, ownerID int64, setName string, item dto.StickerInput) error

	// DeletePack removes a set
	DeletePack(ctx context.Context, setName string) error
}

// PackEventProducer defines interface for publishing pack events to Kafka
type PackEventProducer interface {
	// PublishPackEvent sends a pack event
	PublishPackEvent(ctx context.Context, event *dto.PackEvent) error

	// Close closes the producer
	Close() error
}

// MediaArchive stores accepted originals in object storage
type MediaArchive interface {
	// Archive uploads a local file for the user and returns its object key
	Archive(ctx context.Context, userID int64, path string) (string, error)
}

// FaultRecorder writes per-user error records
type FaultRecorder interface {
	// Record writes the fault and returns the record location and error id
	Record(userID int64, fault error, stack []byte) (path string, errorID string, err error)
}
