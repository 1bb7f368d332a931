package service

import (
	"context"
	"fmt"
	"time"

	"tdls-api/internal/friends"
	"tdls-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteAccount removes the user together with every friendship row touching
// them. The avatar is deleted afterwards on a best effort basis.
func DeleteAccount(ctx context.Context, db *gorm.DB, storage ObjectStorage, user *model.User) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := friends.DeleteAllFor(tx, user.ID); err != nil {
			return err
		}

		if err := tx.Where("id = ?", user.ID).Delete(&model.User{}).Error; err != nil {
			return fmt.Errorf("failed to delete user, %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if user.AvatarKey != "" {
		if err := storage.Delete(ctx, user.AvatarKey); err != nil {
			zap.L().Warn("Failed to delete avatar", zap.Error(err), zap.String("userID", user.ID))
		}
	}

	return nil
}

// CleanupExpiredAccounts deletes users that never verified their email before
// ExpiresAt, along with their friendships and avatars. Returns how many
// accounts were removed.
func CleanupExpiredAccounts(ctx context.Context, db *gorm.DB, storage ObjectStorage, now time.Time) (int, error) {
	var users []model.User

	err := db.WithContext(ctx).
		Where("verified = ? AND expires_at IS NOT NULL AND expires_at < ?", false, now).
		Select("id", "avatar_key").
		Find(&users).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to query db for users to clean, %w", err)
	}

	if len(users) == 0 {
		return 0, nil
	}

	ids := make([]string, len(users))
	var avatarKeys []string

	for i, u := range users {
		ids[i] = u.ID
		if u.AvatarKey != "" {
			avatarKeys = append(avatarKeys, u.AvatarKey)
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := friends.DeleteAllFor(tx, id); err != nil {
				return err
			}
		}

		return tx.Where("id IN ?", ids).Delete(&model.User{}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete users from database, %w", err)
	}

	if len(avatarKeys) > 0 {
		if err := storage.Delete(ctx, avatarKeys...); err != nil {
			zap.L().Error("Failed to delete avatars from object storage", zap.Error(err))
		}
	}

	return len(ids), nil
}
