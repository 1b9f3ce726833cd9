package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nnvstore/backend/internal/models"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, tokenHash string, userID uint, expiresAt time.Time) error {
	row := models.RefreshToken{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// RotateRefreshToken atomically retires the old hash and stores the new one.
// The old row must still exist and be unexpired, so a token that was logged
// out (row deleted) can never mint again.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (*models.RefreshToken, error) {
	var old models.RefreshToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ?", oldHash).First(&old).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if old.ExpiresAt.Before(time.Now()) {
			return ErrNotFound
		}
		if err := tx.Where("token_hash = ?", oldHash).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		next := models.RefreshToken{
			TokenHash: newHash,
			UserID:    old.UserID,
			ExpiresAt: expiresAt,
		}
		return tx.Create(&next).Error
	})
	if err != nil {
		return nil, err
	}
	return &old, nil
}

func (r *GormRepo) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.RefreshToken{}).Error
}

func (r *GormRepo) DeleteAllRefreshTokensForUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// DeleteExpiredRefreshTokens is the periodic sweep, returns how many rows
// went away.
func (r *GormRepo) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return tx.RowsAffected, tx.Error
}
