package seed

import (
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeed(t *testing.T) {
	db := setupSeedDB(t)

	err := Seed(db, Options{NumUsers: 3, NumPosts: 5})
	require.NoError(t, err)

	var userCount, tagCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)

	assert.Equal(t, int64(3), userCount)
	assert.Equal(t, int64(len(tagNames)), tagCount)
	assert.Equal(t, int64(5), postCount)

	// Every post belongs to a seeded user and has a valid status
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, post := range posts {
		assert.NotZero(t, post.UserID)
		assert.True(t, post.Status.Valid())
	}
}

func TestSeed_Clean(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 2, NumPosts: 2}))
	require.NoError(t, Seed(db, Options{NumUsers: 2, NumPosts: 2, ShouldClean: true}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(2), userCount)
}
