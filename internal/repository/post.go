// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows post listings. Status filters by exact equality against
// the declared enumeration; an unrecognized value simply matches nothing.
type PostFilter struct {
	Status string
}

func (f PostFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withRelations preloads everything the default post rendering needs.
func (r *postRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	hit := true
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		hit = false
		observability.CacheMisses.WithLabelValues("post").Inc()
		return r.withRelations(r.db.WithContext(ctx)).First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	if hit {
		observability.CacheHits.WithLabelValues("post").Inc()
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	err := filter.apply(r.withRelations(r.db.WithContext(ctx))).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes a post and its comments in one transaction. A post
// exclusively owns its comments; tags are shared references and survive.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var ownerID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id").First(&post, id).Error; err != nil {
			return err
		}
		ownerID = post.UserID

		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateUser(ctx, ownerID)
	return nil
}
