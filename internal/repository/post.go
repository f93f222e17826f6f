package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostQuery narrows a post listing. Zero fields do not filter.
type PostQuery struct {
	GroupID  uint
	AuthorID uint
	// FollowerID keeps only posts by authors this user follows.
	FollowerID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// Update writes text, group and image. pub_date is never written.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	// List returns posts newest first.
	List(ctx context.Context, q PostQuery, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, q PostQuery) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	var groupID any
	if post.GroupID != nil {
		groupID = *post.GroupID
	}
	res := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": groupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, q PostQuery, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.filter(r.db.WithContext(ctx), q).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, q PostQuery) (int64, error) {
	var n int64
	if err := r.filter(r.db.WithContext(ctx).Model(&models.Post{}), q).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) filter(db *gorm.DB, q PostQuery) *gorm.DB {
	if q.GroupID != 0 {
		db = db.Where("group_id = ?", q.GroupID)
	}
	if q.AuthorID != 0 {
		db = db.Where("author_id = ?", q.AuthorID)
	}
	if q.FollowerID != 0 {
		// A subquery keeps duplicate follow rows from duplicating posts.
		followed := r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", q.FollowerID)
		db = db.Where("author_id IN (?)", followed)
	}
	return db
}
