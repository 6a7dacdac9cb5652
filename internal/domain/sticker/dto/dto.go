// Package dto contains data transfer objects for the sticker domain
package dto

import "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"

// EventKind classifies an inbound update
type EventKind int

const (
	EventCommand EventKind = iota
	EventText
	EventMedia
	EventAction
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventText:
		return "text"
	case EventMedia:
		return "media"
	case EventAction:
		return "action"
	default:
		return "unknown"
	}
}

// IncomingMediaKind is the kind of a media attachment as delivered by the platform
type IncomingMediaKind int

const (
	IncomingPhoto IncomingMediaKind = iota
	IncomingVideo
	IncomingDocument
)

// IncomingMedia describes an attachment that still has to be downloaded
type IncomingMedia struct {
	FileID   string
	Kind     IncomingMediaKind
	MimeType string
}

// MediaKind maps the attachment to a domain kind. ok is false for unsupported documents.
func (m IncomingMedia) MediaKind() (entities.MediaKind, bool) {
	switch m.Kind {
	case IncomingPhoto:
		return entities.MediaKindImage, true
	case IncomingVideo:
		return entities.MediaKindVideo, true
	case IncomingDocument:
		if len(m.MimeType) >= 6 && m.MimeType[:6] == "video/" {
			return entities.MediaKindVideo, true
		}
	}
	return "", false
}

// Event is a single inbound update for one user conversation
type Event struct {
	Kind     EventKind
	UserID   int64
	ChatID   int64
	Username string
	FullName string

	// Command is set for EventCommand without the leading slash
	Command string
	// Text is set for EventText
	Text string
	// Action is the callback data for EventAction
	Action string
	// MessageID is the message carrying the pressed keyboard
	MessageID int
	// Media is set for EventMedia
	Media *IncomingMedia
}

// AuthorName returns the username, falling back to the full name
func (e Event) AuthorName() string {
	if e.Username != "" {
		return e.Username
	}
	return e.FullName
}

// Button is a single inline keyboard button. URL buttons ignore Action.
type Button struct {
	Text   string
	Action string
	URL    string
}

// Keyboard is a grid of inline buttons
type Keyboard [][]Button

// Row builds a keyboard row
func Row(buttons ...Button) []Button {
	return buttons
}

// StickerInput is a single item handed to the registration service
type StickerInput struct {
	Path   string
	Emoji  string
	Format string
}

// PackEvent is published when a pack is created or deleted
type PackEvent struct {
	Type      string `json:"type"`
	PackID    uint   `json:"pack_id"`
	UserID    int64  `json:"user_id"`
	PackName  string `json:"pack_name"`
	SetName   string `json:"set_name"`
	PackLink  string `json:"pack_link"`
	IsPrivate bool   `json:"is_private"`
	Stickers  int    `json:"stickers"`
	Timestamp string `json:"timestamp"`
}

// Pack event types
const (
	PackEventCreated = "pack.created"
	PackEventDeleted = "pack.deleted"
)

// Page is one page of a paginated admin listing
type Page struct {
	Number int
	Total  int64
	Size   int
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Number > 0
}

// HasNext reports whether a next page exists
func (p Page) HasNext() bool {
	return int64((p.Number+1)*p.Size) < p.Total
}

// Offset returns the first row of the page
func (p Page) Offset() int {
	return p.Number * p.Size
}
