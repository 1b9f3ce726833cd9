package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nnvstore/backend/internal/models"
)

const (
	lockAfterAttempts = 5
	lockDuration      = 15 * time.Minute
)

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RecordFailedAttempt bumps the failure counter and locks the account for
// lockDuration once it reaches lockAfterAttempts. An expired lock means the
// previous window is over, so the counter restarts at one instead of
// re-locking on the next single failure.
func (r *GormRepo) RecordFailedAttempt(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if user.LockedUntil != nil && user.LockedUntil.Before(time.Now()) {
			return tx.Model(&models.User{}).
				Where("id = ?", userID).
				Updates(map[string]any{"failed_attempts": 1, "locked_until": nil}).Error
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("failed_attempts", gorm.Expr("failed_attempts + 1")).Error; err != nil {
			return err
		}
		lockedUntil := time.Now().Add(lockDuration)
		return tx.Model(&models.User{}).
			Where("id = ? AND failed_attempts >= ?", userID, lockAfterAttempts).
			Update("locked_until", lockedUntil).Error
	})
}

func (r *GormRepo) ClearFailedAttempts(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"failed_attempts": 0, "locked_until": nil}).Error
}

func IsLocked(u *models.User) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// RemainingLockTime reports how long until the account unlocks, zero when it
// is not locked.
func RemainingLockTime(u *models.User) time.Duration {
	if u.LockedUntil == nil {
		return 0
	}
	d := time.Until(*u.LockedUntil)
	if d < 0 {
		return 0
	}
	return d
}
