// Package errors contains domain-specific errors for the sticker domain
package errors

import (
	pkgerrors "github.com/jsfrau/telegram-stickers-bot/pkg/errors"
)

// Domain errors for sticker operations
var (
	ErrNoSession         = pkgerrors.NewValidationError("no active submission")
	ErrNoMedia           = pkgerrors.NewValidationError("no media items in submission")
	ErrUnsupportedMedia  = pkgerrors.NewValidationError("only photos and videos are accepted")
	ErrInvalidEmoji      = pkgerrors.NewValidationError("input is not a single emoji")
	ErrInvalidPackName   = pkgerrors.NewValidationError("pack name must be non-empty ASCII")
	ErrPackNameTooLong   = pkgerrors.NewValidationError("pack name is too long")
	ErrInvalidItemNumber = pkgerrors.NewValidationError("item number out of range")
	ErrKindMismatch      = pkgerrors.NewValidationError("replacement kind does not match")
	ErrInvalidVariant    = pkgerrors.NewValidationError("variant index out of range")
	ErrUnknownAction     = pkgerrors.NewValidationError("unknown action")
	ErrPackNotFound      = pkgerrors.NewNotFoundError("sticker pack not found")
	ErrNotPackOwner      = pkgerrors.NewPermissionError("sticker pack belongs to another user")
	ErrNotAdmin          = pkgerrors.NewPermissionError("admin rights required")
	ErrTransformation    = pkgerrors.NewInternalError("media transformation failed")
	ErrRegistration      = pkgerrors.NewInternalError("sticker set registration failed")
	ErrDownload          = pkgerrors.NewInternalError("media download failed")
	ErrKafkaProducer     = pkgerrors.NewInternalError("kafka producer error")
)
