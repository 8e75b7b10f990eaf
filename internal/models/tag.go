package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag is a shared label attached to posts. Names are unique under
// case-insensitive comparison; a tag's lifecycle is independent of any post.
type Tag struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:50;not null" json:"name"`
	Posts     []Post         `gorm:"many2many:post_tags" json:"posts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
