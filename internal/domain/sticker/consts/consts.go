// Package consts contains constants for the sticker domain
package consts

import "time"

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart  = Command{Name: "start", Description: "Главное меню"}
	CommandCancel = Command{Name: "cancel", Description: "Отменить создание стикерпака"}
	CommandDone   = Command{Name: "done", Description: "Закончить загрузку файлов"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandCancel,
	CommandDone,
}

// Callback actions sent by inline keyboards
const (
	ActionCreateNew     = "create_new"
	ActionContinue      = "continue"
	ActionContinueBatch = "continue_batch"
	ActionDeletePack    = "delete_pack"
	ActionPublicPacks   = "view_public_packs"
	ActionAbout         = "about"
	ActionBackToMain    = "back_to_main"

	ActionCreatePack   = "create_pack"
	ActionEditStickers = "edit_stickers"
	ActionProcessMedia = "process_media"
	ActionDone         = "done"
	ActionCancel       = "cancel"

	ActionEditMore = "edit_more"
	ActionEditDone = "edit_done"

	ActionPrevMedia       = "prev_media"
	ActionNextMedia       = "next_media"
	ActionSelectVariant   = "select_variant_"
	ActionKeepOriginal    = "keep_original"
	ActionBackToIntake    = "back_to_previous_menu"
	ActionSkipEmoji       = "skip"
	ActionSkipAllEmoji    = "skip_all"
	ActionPrivate         = "private"
	ActionPublic          = "public"
	ActionBackToName      = "back_to_name"
	ActionPrevInvalid     = "prev_invalid_video"
	ActionNextInvalid     = "next_invalid_video"
	ActionTrimCurrent     = "trim_current_video"
	ActionTrimAll         = "trim_all_videos"
	ActionDeleteCurrent   = "delete_current_video"
	ActionConfirmDelete   = "confirm_delete:"
	ActionAdminPanel      = "admin_panel"
	ActionAdminUsers      = "admin_users:"
	ActionAdminUser       = "admin_user:"
	ActionAdminAllPacks   = "admin_all_packs:"
	ActionAdminPack       = "admin_pack:"
	ActionAdminDeletePack = "admin_delete_pack:"
)

// Sticker limits enforced by the platform
const (
	MaxVideoSizeBytes = 512 * 1024
	MaxVideoDuration  = 3.0
	MaxDimension      = 512
	ClipFPS           = 30
	MaxSetNameLength  = 64
	SetNamePrefixMax  = 32
)

// Sticker formats
const (
	FormatStatic = "static"
	FormatVideo  = "video"
)

// Paging
const (
	AdminPageSize   = 10
	PublicPacksMax  = 10
	StickerLinkBase = "https://t.me/addstickers/"
)

// Timeouts for collaborator calls
const (
	TransformTimeout    = 2 * time.Minute
	RegistrationTimeout = 30 * time.Second
	JanitorInterval     = time.Minute
)
