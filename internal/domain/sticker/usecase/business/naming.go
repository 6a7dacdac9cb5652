package business

import (
	"regexp"
	"strings"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/consts"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
)

var setNameInvalid = regexp.MustCompile(`[^a-z0-9_]+`)

// MaxPackNameLength is the longest title that still fits a set name for bot
func MaxPackNameLength(bot string) int {
	return consts.MaxSetNameLength - len("_by_") - len(bot)
}

// ValidatePackName accepts a non-empty ASCII title whose set name starts with a letter
func ValidatePackName(name, bot string) error {
	if name == "" {
		return stickererrors.ErrInvalidPackName
	}

	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return stickererrors.ErrInvalidPackName
		}
	}

	base := sanitizeSetName(name)
	if base == "" || base[0] < 'a' || base[0] > 'z' {
		return stickererrors.ErrInvalidPackName
	}

	if len(name) > MaxPackNameLength(bot) {
		return stickererrors.ErrPackNameTooLong
	}

	return nil
}

// StickerSetName builds the platform set name: <sanitized title_format>_by_<bot>
func StickerSetName(title, format, bot string) string {
	base := sanitizeSetName(title + "_" + format)
	if len(base) > consts.SetNamePrefixMax {
		base = base[:consts.SetNamePrefixMax]
	}
	return base + "_by_" + bot
}

// PackLink returns the public link of a set
func PackLink(setName string) string {
	return consts.StickerLinkBase + setName
}

func sanitizeSetName(s string) string {
	return setNameInvalid.ReplaceAllString(strings.ToLower(s), "")
}
