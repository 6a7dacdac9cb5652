// Package postgres contains the gorm implementation of the sticker store
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/entities"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
)

type store struct {
	db *gorm.DB
}

// NewStore creates a new sticker store
func NewStore(db *gorm.DB) deps.Store {
	return &store{db: db}
}

// UpsertUser creates the user row if missing and refreshes the username
func (r *store) UpsertUser(ctx context.Context, userID int64, username string) error {
	user := entities.User{ID: userID, Username: username}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username"}),
		}).
		Create(&user).Error
}

// NextPhotoCounter atomically increments and returns the user's photo counter
func (r *store) NextPhotoCounter(ctx context.Context, userID int64) (int, error) {
	return r.nextCounter(ctx, userID, "photo_counter")
}

// NextVideoCounter atomically increments and returns the user's video counter
func (r *store) NextVideoCounter(ctx context.Context, userID int64) (int, error) {
	return r.nextCounter(ctx, userID, "video_counter")
}

// nextCounter runs read-increment-write in one transaction holding the user row lock
func (r *store) nextCounter(ctx context.Context, userID int64, column string) (int, error) {
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := entities.User{ID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&user).Error; err != nil {
			return err
		}

		switch column {
		case "photo_counter":
			next = user.PhotoCounter + 1
		case "video_counter":
			next = user.VideoCounter + 1
		default:
			return fmt.Errorf("unknown counter %q", column)
		}

		return tx.Model(&entities.User{}).
			Where("user_id = ?", userID).
			UpdateColumn(column, next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", column, err)
	}

	return next, nil
}

// RecordMediaItem stores a reference to an accepted original
func (r *store) RecordMediaItem(ctx context.Context, userID int64, path, name string, kind entities.MediaKind) error {
	return r.db.WithContext(ctx).Create(&entities.UserMedia{
		UserID: userID,
		Kind:   kind,
		Path:   path,
		Name:   name,
	}).Error
}

// RecordPack persists a registered pack and fills its ID
func (r *store) RecordPack(ctx context.Context, pack *entities.StickerPack) error {
	return r.db.WithContext(ctx).Create(pack).Error
}

// IsAdmin reports whether the user has admin rights
func (r *store) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Admin{}).
		Where("admin_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetAdmin grants or revokes admin rights
func (r *store) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	if !admin {
		return r.db.WithContext(ctx).
			Where("admin_id = ?", userID).
			Delete(&entities.Admin{}).Error
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.Admin{UserID: userID}).Error
}

// GetPack returns a pack by ID
func (r *store) GetPack(ctx context.Context, packID uint) (*entities.StickerPack, error) {
	var pack entities.StickerPack
	err := r.db.WithContext(ctx).
		Where("pack_id = ?", packID).
		First(&pack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stickererrors.ErrPackNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

// DeletePack removes a pack record
func (r *store) DeletePack(ctx context.Context, packID uint) error {
	result := r.db.WithContext(ctx).
		Where("pack_id = ?", packID).
		Delete(&entities.StickerPack{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return stickererrors.ErrPackNotFound
	}
	return nil
}

// ListUserPacks returns all packs owned by the user
func (r *store) ListUserPacks(ctx context.Context, userID int64) ([]entities.StickerPack, error) {
	var packs []entities.StickerPack
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("pack_id").
		Find(&packs).Error
	if err != nil {
		return nil, err
	}
	return packs, nil
}

// ListPublicPacks returns up to limit public packs, newest first
func (r *store) ListPublicPacks(ctx context.Context, limit int) ([]entities.StickerPack, error) {
	var packs []entities.StickerPack
	err := r.db.WithContext(ctx).
		Where("is_private = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&packs).Error
	if err != nil {
		return nil, err
	}
	return packs, nil
}

// ListPacks returns one page of all packs and the total count
func (r *store) ListPacks(ctx context.Context, offset, limit int) ([]entities.StickerPack, int64, error) {
	var (
		packs []entities.StickerPack
		total int64
	)

	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.StickerPack{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("pack_id").
		Offset(offset).
		Limit(limit).
		Find(&packs).Error
	if err != nil {
		return nil, 0, err
	}

	return packs, total, nil
}

// ListUsers returns one page of users and the total count
func (r *store) ListUsers(ctx context.Context, offset, limit int) ([]entities.User, int64, error) {
	var (
		users []entities.User
		total int64
	)

	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("user_id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// RecordMessage stores a per-user message log row
func (r *store) RecordMessage(ctx context.Context, msg *entities.UserMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
