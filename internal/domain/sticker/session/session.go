// Package session holds the volatile per-user submission state
package session

import (
	"time"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
)

// Mode governs how intake reacts to each accepted item
type Mode int

const (
	// ModeSingle shows the status menu after every accepted item
	ModeSingle Mode = iota
	// ModeMulti accumulates items until an explicit done
	ModeMulti
)

// State names the conversation state a stage belongs to
type State string

const (
	StateChoosingAction    State = "CHOOSING_ACTION"
	StateProcessingSticker State = "PROCESSING_STICKERS"
	StateEditingStickers   State = "EDITING_STICKERS"
	StateProcessingMedia   State = "PROCESSING_MEDIA"
	StateAwaitingEmoji     State = "AWAITING_EMOJI"
	StateAwaitingPackName  State = "AWAITING_PACK_NAME"
	StateAwaitingPrivacy   State = "AWAITING_PRIVACY"
	StateVideoValidation   State = "VIDEO_VALIDATION"
)

// Stage is the per-state data of a conversation. Each stage owns its cursor.
type Stage interface {
	State() State
}

// IntakeStage accepts media and offers the next step
type IntakeStage struct{}

// State implements Stage
func (*IntakeStage) State() State { return StateProcessingSticker }

// EditStage replaces items one at a time. Target is -1 until an item number is chosen.
type EditStage struct {
	Target int
}

// State implements Stage
func (*EditStage) State() State { return StateEditingStickers }

// VariantReviewStage walks items choosing a transformed variant for each
type VariantReviewStage struct {
	Cursor int
}

// State implements Stage
func (*VariantReviewStage) State() State { return StateProcessingMedia }

// EmojiStage assigns an emoji to each item in images ++ videos order
type EmojiStage struct {
	Cursor int
}

// State implements Stage
func (*EmojiStage) State() State { return StateAwaitingEmoji }

// NameStage waits for the pack name
type NameStage struct{}

// State implements Stage
func (*NameStage) State() State { return StateAwaitingPackName }

// PrivacyStage waits for the privacy choice
type PrivacyStage struct{}

// State implements Stage
func (*PrivacyStage) State() State { return StateAwaitingPrivacy }

// InvalidEntry is a clip that failed validation with the reason
type InvalidEntry struct {
	Item   *entities.MediaItem
	Reason string
}

// InvalidReviewStage resolves clips that failed validation before assembly
type InvalidReviewStage struct {
	Entries []InvalidEntry
	Cursor  int
}

// State implements Stage
func (*InvalidReviewStage) State() State { return StateVideoValidation }

// Current returns the entry under the cursor
func (s *InvalidReviewStage) Current() (InvalidEntry, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Entries) {
		return InvalidEntry{}, false
	}
	return s.Entries[s.Cursor], true
}

// Remove drops the entry under the cursor and keeps the cursor in range
func (s *InvalidReviewStage) Remove() (InvalidEntry, bool) {
	entry, ok := s.Current()
	if !ok {
		return InvalidEntry{}, false
	}
	s.Entries = append(s.Entries[:s.Cursor], s.Entries[s.Cursor+1:]...)
	s.Cursor = Clamp(s.Cursor, len(s.Entries))
	return entry, true
}

// Session is one user's in-progress submission
type Session struct {
	UserID     int64
	ChatID     int64
	Mode       Mode
	Images     []*entities.MediaItem
	Videos     []*entities.MediaItem
	PackName   string
	AuthorName string
	IsPrivate  bool
	Stage      Stage
	LastSeen   time.Time
}

// New creates an empty session in intake
func New(userID, chatID int64, mode Mode) *Session {
	return &Session{
		UserID:   userID,
		ChatID:   chatID,
		Mode:     mode,
		Stage:    &IntakeStage{},
		LastSeen: time.Now(),
	}
}

// State returns the current conversation state
func (s *Session) State() State {
	if s == nil || s.Stage == nil {
		return StateChoosingAction
	}
	return s.Stage.State()
}

// Items returns images followed by videos
func (s *Session) Items() []*entities.MediaItem {
	items := make([]*entities.MediaItem, 0, len(s.Images)+len(s.Videos))
	items = append(items, s.Images...)
	return append(items, s.Videos...)
}

// Count returns the number of accepted items
func (s *Session) Count() int {
	return len(s.Images) + len(s.Videos)
}

// Add appends an item to the list of its kind
func (s *Session) Add(item *entities.MediaItem) {
	if item.Kind == entities.MediaKindImage {
		s.Images = append(s.Images, item)
		return
	}
	s.Videos = append(s.Videos, item)
}

// Replace swaps the item at index of images ++ videos. The kind must match.
func (s *Session) Replace(index int, item *entities.MediaItem) bool {
	if index < 0 || index >= s.Count() {
		return false
	}
	if index < len(s.Images) {
		if item.Kind != entities.MediaKindImage {
			return false
		}
		s.Images[index] = item
		return true
	}
	if item.Kind != entities.MediaKindVideo {
		return false
	}
	s.Videos[index-len(s.Images)] = item
	return true
}

// ItemAt returns the item at index of images ++ videos
func (s *Session) ItemAt(index int) (*entities.MediaItem, bool) {
	if index < 0 || index >= s.Count() {
		return nil, false
	}
	if index < len(s.Images) {
		return s.Images[index], true
	}
	return s.Videos[index-len(s.Images)], true
}

// Emojis returns the assigned emoji in images ++ videos order.
// Assignment advances in that order, so the result is always a prefix of the items.
func (s *Session) Emojis() []string {
	var out []string
	for _, item := range s.Items() {
		if item.Emoji == "" {
			break
		}
		out = append(out, item.Emoji)
	}
	return out
}

// ResetEmojis clears every assignment so the emoji cursor can restart at zero
func (s *Session) ResetEmojis() {
	for _, item := range s.Items() {
		item.Emoji = ""
	}
}

// Clamp bounds a cursor to [0, n-1], or 0 for an empty collection
func Clamp(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
