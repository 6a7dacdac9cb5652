// Package s3 provides the MinIO object storage client
package s3

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/config"
)

// Client wraps MinIO client with file upload functionality
type Client struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewClient creates a new S3/MinIO client. It returns nil when storage is not configured.
func NewClient(cfg *config.S3Config, logger zerolog.Logger) (*Client, error) {
	logger = logger.With().Str("component", "s3").Logger()

	if !cfg.Enabled() {
		logger.Info().Msg("S3 endpoint not configured, media archiving disabled")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates bucket if it doesn't exist
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		c.logger.Info().Str("bucket", c.bucket).Msg("created S3 bucket")
	}

	return nil
}

// PutFile uploads a local file under objectKey
func (c *Client) PutFile(ctx context.Context, objectKey, filePath, contentType string) error {
	info, err := c.client.FPutObject(ctx, c.bucket, objectKey, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload media to S3: %w", err)
	}

	c.logger.Debug().
		Str("object_key", objectKey).
		Int64("size", info.Size).
		Msg("uploaded media to S3")

	return nil
}
