package transformer

import (
	"fmt"
	"strconv"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
)

const clipBitrate = "256k"

// scaleFilter shrinks frames to fit the sticker box without upscaling and sets the frame rate
func scaleFilter() string {
	return fmt.Sprintf(
		"scale=w='min(%d,iw)':h='min(%d,ih)':force_original_aspect_ratio=decrease:force_divisible_by=2,fps=%d",
		consts.MaxDimension, consts.MaxDimension, consts.ClipFPS,
	)
}

func encodeArgs(dst string) []string {
	return []string{
		"-t", strconv.FormatFloat(consts.MaxVideoDuration, 'f', -1, 64),
		"-vf", scaleFilter(),
		"-c:v", "libvpx-vp9",
		"-b:v", clipBitrate,
		"-pix_fmt", "yuva420p",
		"-an",
		dst,
	}
}

// clipArgs transcodes a clip to a sticker-sized VP9 WebM without audio
func clipArgs(src, dst string) []string {
	return append([]string{"-y", "-v", "error", "-i", src}, encodeArgs(dst)...)
}

// imageClipArgs loops a still image into a clip
func imageClipArgs(src, dst string) []string {
	return append([]string{"-y", "-v", "error", "-loop", "1", "-i", src}, encodeArgs(dst)...)
}

// variantArgs re-encodes a clip at constant quality
func variantArgs(src, dst string) []string {
	args := []string{"-y", "-v", "error", "-i", src, "-crf", "30"}
	return append(args, encodeArgs(dst)...)
}
