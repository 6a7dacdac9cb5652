// Package media contains pure media validation and the emoji table
package media

import (
	"fmt"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
)

// VideoProbe is the measured properties of a clip
type VideoProbe struct {
	SizeBytes       int64
	DurationSeconds float64
	Width           int
	Height          int
}

// ValidateVideo checks a clip against the video sticker limits.
// Rules are checked in order size, duration, resolution and the first failing rule is reported.
func ValidateVideo(p VideoProbe) (bool, string) {
	if p.SizeBytes > consts.MaxVideoSizeBytes {
		return false, fmt.Sprintf("Размер файла %d байт превышает максимальный 512 КБ.", p.SizeBytes)
	}

	if p.DurationSeconds > consts.MaxVideoDuration {
		return false, fmt.Sprintf("Длительность видео %.2f секунд превышает максимально допустимые 3 секунды.", p.DurationSeconds)
	}

	if p.Width > consts.MaxDimension || p.Height > consts.MaxDimension {
		return false, fmt.Sprintf("Разрешение видео %dx%d пикселей превышает максимально допустимые 512x512.", p.Width, p.Height)
	}

	return true, ""
}

// FitWithin scales width and height down so neither exceeds limit, keeping the aspect ratio
func FitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}

	if width > height {
		return limit, int(float64(height) * float64(limit) / float64(width))
	}

	return int(float64(width) * float64(limit) / float64(height)), limit
}
