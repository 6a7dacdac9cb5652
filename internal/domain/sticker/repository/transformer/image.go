package transformer

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
)

// NormalizeImage decodes a photo, shrinks it to fit the sticker box and writes a PNG
func (t *Transformer) NormalizeImage(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	resized := fitImage(img, consts.MaxDimension)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create png: %w", err)
	}
	if err := png.Encode(out, resized); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}

	t.logger.Debug().
		Str("format", format).
		Int("orig_width", img.Bounds().Dx()).
		Int("orig_height", img.Bounds().Dy()).
		Int("new_width", resized.Bounds().Dx()).
		Int("new_height", resized.Bounds().Dy()).
		Msg("Image normalized")

	return nil
}

// fitImage returns img scaled down so neither side exceeds limit
func fitImage(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	width, height := media.FitWithin(bounds.Dx(), bounds.Dy(), limit)
	if width == bounds.Dx() && height == bounds.Dy() {
		return img
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}
