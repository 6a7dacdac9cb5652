// Package transformer implements media transformations with ffmpeg, ffprobe,
// a rembg background-removal service and pure Go image scaling
package transformer

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/config"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
)

// Transformer implements deps.Transformer
type Transformer struct {
	ffmpeg  string
	ffprobe string
	rembg   *RembgClient
	models  []string
	logger  zerolog.Logger
}

// NewTransformer creates a media transformer from config
func NewTransformer(cfg *config.MediaConfig, logger zerolog.Logger) deps.Transformer {
	logger = logger.With().Str("component", "transformer").Logger()
	return &Transformer{
		ffmpeg:  binaryOr(cfg.FFmpegBinary, "ffmpeg"),
		ffprobe: binaryOr(cfg.FFprobeBinary, "ffprobe"),
		rembg:   NewRembgClient(cfg.RembgURL, logger),
		models:  cfg.RembgModels,
		logger:  logger,
	}
}

// ProduceVariants returns one background-removed PNG per configured model for
// images and a re-encoded clip for videos. Models that fail are skipped.
func (t *Transformer) ProduceVariants(ctx context.Context, path string, kind entities.MediaKind) ([]string, error) {
	if kind == entities.MediaKindVideo {
		dst := withSuffix(path, "_variant1.webm")
		if err := t.run(ctx, variantArgs(path, dst)); err != nil {
			return nil, err
		}
		return []string{dst}, nil
	}

	var (
		variants []string
		lastErr  error
	)
	for _, model := range t.models {
		dst := withSuffix(path, "_"+model+".png")
		if err := t.rembg.RemoveBackground(ctx, path, dst, model); err != nil {
			lastErr = err
			t.logger.Warn().Err(err).Str("model", model).Str("path", path).Msg("Background removal failed")
			continue
		}
		variants = append(variants, dst)
	}

	if len(variants) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no background removal models configured")
		}
		return nil, lastErr
	}

	return variants, nil
}

// Trim re-encodes the first allowed seconds of a clip
func (t *Transformer) Trim(ctx context.Context, path string) (string, error) {
	dst := withSuffix(path, "_trimmed.webm")
	if err := t.run(ctx, clipArgs(path, dst)); err != nil {
		return "", err
	}
	return dst, nil
}

// ConvertImageToClip renders a still image as a clip of the maximum allowed length
func (t *Transformer) ConvertImageToClip(ctx context.Context, path string) (string, error) {
	dst := withSuffix(path, "_converted.webm")
	if err := t.run(ctx, imageClipArgs(path, dst)); err != nil {
		return "", err
	}
	return dst, nil
}

// ConvertClipFormat transcodes an uploaded clip into WebM next to the source
func (t *Transformer) ConvertClipFormat(ctx context.Context, path string) (string, error) {
	dst := withSuffix(path, ".webm")
	if dst == path {
		dst = withSuffix(path, "_clip.webm")
	}
	if err := t.run(ctx, clipArgs(path, dst)); err != nil {
		return "", err
	}
	return dst, nil
}

func (t *Transformer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.ffmpeg, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(output))
	}
	t.logger.Debug().Strs("args", args).Msg("ffmpeg finished")
	return nil
}

// withSuffix replaces the extension of path with suffix
func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

func binaryOr(binary, fallback string) string {
	if b := strings.TrimSpace(binary); b != "" {
		return b
	}
	return fallback
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
