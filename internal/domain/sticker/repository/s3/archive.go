// Package s3 contains the object storage archive of accepted media
package s3

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	s3infra "github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/s3"
)

type objectPutter interface {
	PutFile(ctx context.Context, objectKey, filePath, contentType string) error
}

type archive struct {
	client objectPutter
}

// NewArchive creates a media archive. A nil client disables archiving.
func NewArchive(client *s3infra.Client) deps.MediaArchive {
	if client == nil {
		return noopArchive{}
	}
	return &archive{client: client}
}

// Archive uploads the file as <user_id>/<file name>
func (a *archive) Archive(ctx context.Context, userID int64, path string) (string, error) {
	key := ObjectKey(userID, path)
	if err := a.client.PutFile(ctx, key, path, ContentType(path)); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filepath.Base(path), err)
	}
	return key, nil
}

// ObjectKey returns the storage key of a user's file
func ObjectKey(userID int64, path string) string {
	return strconv.FormatInt(userID, 10) + "/" + filepath.Base(path)
}

// ContentType guesses the MIME type from the file extension
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webm":
		return "video/webm"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

type noopArchive struct{}

func (noopArchive) Archive(context.Context, int64, string) (string, error) { return "", nil }
