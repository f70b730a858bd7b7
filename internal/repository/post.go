package repository

import (
	"context"
	"errors"

	"postboard/internal/cache"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// ListFilter narrows and orders post listings.
type ListFilter struct {
	SortBy   string // "created_at" or "title", always descending
	Limit    int
	AuthorID uint
}

// PostRepository defines data access methods for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter ListFilter) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewNotFoundError("User", post.AuthorID)
		}
		return models.NewInternalError("failed to create post", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError("failed to get post", err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter ListFilter) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})

	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	query = query.Order(sortBy + " DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError("failed to list posts", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewNotFoundError("User", post.AuthorID)
		}
		return models.NewInternalError("failed to update post", err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return models.NewInternalError("failed to delete post", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
