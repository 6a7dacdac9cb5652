package transformer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/media"
)

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Probe measures a clip with ffprobe. The size comes from the file itself.
func (t *Transformer) Probe(ctx context.Context, path string) (media.VideoProbe, error) {
	info, err := os.Stat(path)
	if err != nil {
		return media.VideoProbe{}, fmt.Errorf("ffprobe stat: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.ffprobe, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return media.VideoProbe{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	probe, err := parseProbe(output)
	if err != nil {
		return media.VideoProbe{}, err
	}
	probe.SizeBytes = info.Size()

	return probe, nil
}

// parseProbe reads duration and dimensions of the first video stream
func parseProbe(output []byte) (media.VideoProbe, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return media.VideoProbe{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	probe := media.VideoProbe{
		DurationSeconds: parseFloat(result.Format.Duration),
	}
	if size := parseFloat(result.Format.Size); size > 0 {
		probe.SizeBytes = int64(size)
	}

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		probe.Width = stream.Width
		probe.Height = stream.Height
		if probe.DurationSeconds == 0 {
			probe.DurationSeconds = parseFloat(stream.Duration)
		}
		return probe, nil
	}

	return media.VideoProbe{}, fmt.Errorf("ffprobe parse: no video stream")
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}
