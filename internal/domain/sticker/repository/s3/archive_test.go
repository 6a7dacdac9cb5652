package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	key         string
	path        string
	contentType string
	err         error
}

func (f *fakePutter) PutFile(_ context.Context, objectKey, filePath, contentType string) error {
	f.key, f.path, f.contentType = objectKey, filePath, contentType
	return f.err
}

func TestArchiveUploadsUnderUserPrefix(t *testing.T) {
	putter := &fakePutter{}
	a := &archive{client: putter}

	key, err := a.Archive(context.Background(), 42, "/data/videos/42/42_3.webm")
	require.NoError(t, err)

	assert.Equal(t, "42/42_3.webm", key)
	assert.Equal(t, "/data/videos/42/42_3.webm", putter.path)
	assert.Equal(t, "video/webm", putter.contentType)
}

func TestArchiveReturnsUploadError(t *testing.T) {
	a := &archive{client: &fakePutter{err: errors.New("connection refused")}}

	key, err := a.Archive(context.Background(), 42, "/data/images/42/42_1.png")
	require.Error(t, err)
	assert.Empty(t, key)
	assert.Contains(t, err.Error(), "42_1.png")
}

func TestNewArchiveWithoutClientIsNoop(t *testing.T) {
	a := NewArchive(nil)

	key, err := a.Archive(context.Background(), 42, "/data/images/42/42_1.png")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentType("a.jpg"))
	assert.Equal(t, "video/mp4", ContentType("a.mp4"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}
