package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// UserRepository reads identity records. Account creation and destruction
// belong to the external identity subsystem.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// withRelations preloads everything the default user detail rendering needs:
// posts render with their own full default field set.
func (r *userRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("posts.created_at DESC")
		}).
		Preload("Posts.User").
		Preload("Posts.Tags").
		Preload("Posts.Comments").
		Preload("Posts.Comments.User").
		Preload("Comments").
		Preload("Comments.User")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	hit := true
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		hit = false
		observability.CacheMisses.WithLabelValues("user").Inc()
		return r.withRelations(r.db.WithContext(ctx)).First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	if hit {
		observability.CacheHits.WithLabelValues("user").Inc()
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.withRelations(r.db.WithContext(ctx)).Order("id ASC").Find(&users).Error
	return users, err
}
