// Package entities contains domain entities
package entities

import "time"

// MediaKind is the kind of a submitted media item
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaItem is one accepted photo or video inside a submission
type MediaItem struct {
	SourcePath   string
	Kind         MediaKind
	VariantPaths []string
	// SelectedPath is empty until a variant is chosen
	SelectedPath string
	// Emoji is empty until assigned
	Emoji string
}

// NewMediaItem creates an item whose selected path defaults to the source
func NewMediaItem(path string, kind MediaKind) *MediaItem {
	return &MediaItem{SourcePath: path, Kind: kind}
}

// Path returns the path used in final assembly
func (m *MediaItem) Path() string {
	if m.SelectedPath != "" {
		return m.SelectedPath
	}
	return m.SourcePath
}

// User is a bot user with per-kind media counters
type User struct {
	ID           int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Username     string    `gorm:"column:username"`
	PhotoCounter int       `gorm:"column:photo_counter;not null;default:0"`
	VideoCounter int       `gorm:"column:video_counter;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for gorm
func (User) TableName() string {
	return "users"
}

// StickerPack is a registered sticker set
type StickerPack struct {
	ID         uint      `gorm:"column:pack_id;primaryKey"`
	UserID     int64     `gorm:"column:user_id;not null;index"`
	PackName   string    `gorm:"column:pack_name;not null"`
	SetName    string    `gorm:"column:set_name;not null"`
	AuthorName string    `gorm:"column:author_name"`
	PackLink   string    `gorm:"column:pack_link;not null"`
	IsPrivate  bool      `gorm:"column:is_private;not null;default:true"`
	Stickers   int       `gorm:"column:stickers;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for gorm
func (StickerPack) TableName() string {
	return "sticker_packs"
}

// UserMedia is a stored original of an accepted item
type UserMedia struct {
	ID        uint      `gorm:"column:media_id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Kind      MediaKind `gorm:"column:kind;not null"`
	Path      string    `gorm:"column:path;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for gorm
func (UserMedia) TableName() string {
	return "user_media"
}

// UserMessage is a per-user record of a message, optionally linked to an error log file
type UserMessage struct {
	ID           uint      `gorm:"column:message_id;primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	MessageText  string    `gorm:"column:message_text"`
	HasError     bool      `gorm:"column:has_error;not null;default:false"`
	ErrorLogLink string    `gorm:"column:error_log_link"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for gorm
func (UserMessage) TableName() string {
	return "user_messages"
}

// Admin marks a user as an administrator
type Admin struct {
	UserID int64 `gorm:"column:admin_id;primaryKey;autoIncrement:false"`
}

// TableName returns the table name for gorm
func (Admin) TableName() string {
	return "admins"
}
