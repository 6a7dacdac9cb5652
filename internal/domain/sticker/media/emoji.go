package media

import (
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

var (
	singleCodepoint     []string
	singleCodepointOnce sync.Once
)

// IsEmoji reports whether s is exactly one grapheme found in the canonical emoji table
func IsEmoji(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || uniseg.GraphemeClusterCount(s) != 1 {
		return false
	}

	_, err := gomoji.GetInfo(s)
	return err == nil
}

// SingleCodepointEmojis returns every emoji in the table made of a single code point
func SingleCodepointEmojis() []string {
	singleCodepointOnce.Do(func() {
		for _, e := range gomoji.AllEmojis() {
			if utf8.RuneCountInString(e.Character) == 1 {
				singleCodepoint = append(singleCodepoint, e.Character)
			}
		}
	})
	return singleCodepoint
}

// RandomEmoji draws uniformly from the single code point emoji
func RandomEmoji() string {
	set := SingleCodepointEmojis()
	if len(set) == 0 {
		return "🙂"
	}
	return set[rand.IntN(len(set))]
}
