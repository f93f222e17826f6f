package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for follow pairings.
type FollowRepository interface {
	// Ensure creates the (user, author) pairing unless one already exists.
	// It reports whether a row was created.
	Ensure(ctx context.Context, userID, authorID uint) (bool, error)
	// Remove deletes every pairing for (user, author) and returns how many went.
	Remove(ctx context.Context, userID, authorID uint) (int64, error)
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	Count(ctx context.Context, userID, authorID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Ensure(ctx context.Context, userID, authorID uint) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", userID, authorID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		if err := tx.Omit("User", "Author").Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return created, nil
}

func (r *followRepository) Remove(ctx context.Context, userID, authorID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	n, err := r.Count(ctx, userID, authorID)
	return n > 0, err
}

func (r *followRepository) Count(ctx context.Context, userID, authorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
