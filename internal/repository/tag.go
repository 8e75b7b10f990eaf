package repository

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// duplicateTagNameMessage is the field-level message attached to `name` when
// the case-insensitive uniqueness rule is violated.
const duplicateTagNameMessage = "A tag with this name already exists."

// TagRepository defines interface for tag operations.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create inserts a tag after re-checking name uniqueness inside the same
// transaction. The unique expression index on LOWER(name) closes the race
// window between the check and the insert; a constraint violation from a
// concurrent writer is translated into the same field error.
func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).
			Where("LOWER(name) = LOWER(?)", tag.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewFieldValidationError("name", duplicateTagNameMessage)
		}
		return tx.Create(tag).Error
	})
	if err != nil {
		if isDuplicateNameError(err) {
			err = models.NewFieldValidationError("name", duplicateTagNameMessage)
		}
		if appErr, ok := err.(*models.AppError); ok && len(appErr.Fields) > 0 {
			observability.ValidationFailures.WithLabelValues("tag", "name").Inc()
		}
		return err
	}
	cache.InvalidateTags(ctx)
	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := cache.Aside(ctx, cache.TagsKey, &tags, cache.TagsTTL, func() error {
		observability.CacheMisses.WithLabelValues("tags").Inc()
		return r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	})
	return tags, err
}

// Update re-validates name uniqueness against every other tag.
func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).
			Where("LOWER(name) = LOWER(?) AND id <> ?", tag.Name, tag.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewFieldValidationError("name", duplicateTagNameMessage)
		}
		return tx.Save(tag).Error
	})
	if err != nil {
		if isDuplicateNameError(err) {
			err = models.NewFieldValidationError("name", duplicateTagNameMessage)
		}
		if appErr, ok := err.(*models.AppError); ok && len(appErr.Fields) > 0 {
			observability.ValidationFailures.WithLabelValues("tag", "name").Inc()
		}
		return err
	}
	cache.InvalidateTags(ctx)
	r.invalidateTaggedPosts(ctx, tag.ID)
	return nil
}

// Delete detaches the tag from all posts and removes it. Posts survive.
func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	postIDs := r.taggedPostIDs(ctx, id)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateTags(ctx)
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, postID)
	}
	return nil
}

func (r *tagRepository) taggedPostIDs(ctx context.Context, tagID uint) []uint {
	var postIDs []uint
	if err := r.db.WithContext(ctx).
		Table("post_tags").
		Where("tag_id = ?", tagID).
		Pluck("post_id", &postIDs).Error; err != nil {
		return nil
	}
	return postIDs
}

func (r *tagRepository) invalidateTaggedPosts(ctx context.Context, tagID uint) {
	for _, postID := range r.taggedPostIDs(ctx, tagID) {
		cache.InvalidatePost(ctx, postID)
	}
}

// isDuplicateNameError reports whether err comes from the unique index on
// LOWER(name), i.e. a concurrent writer won the race.
func isDuplicateNameError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "idx_tags_name_lower") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
