package seed

import (
	"fmt"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagNames = []string{
	"golang", "python", "javascript", "databases", "testing", "devops",
	"architecture", "frontend", "backend", "security", "performance",
	"open-source", "career", "tooling", "cloud",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	middleware.Logger.Info("starting database seeding",
		"users", opts.NumUsers, "posts", opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			middleware.Logger.Warn("could not clear all existing data, continuing", "error", err)
		}
	}

	factory := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	middleware.Logger.Info("test users created", "count", len(users))

	tags := make([]models.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag, err := factory.CreateTag(name)
		if err != nil {
			return fmt.Errorf("failed to create tags: %w", err)
		}
		tags = append(tags, *tag)
	}
	middleware.Logger.Info("tags created", "count", len(tags))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rand.Intn(len(users))]
		postTags := pickTags(factory, tags)
		post, err := factory.CreatePost(author, postTags)
		if err != nil {
			return fmt.Errorf("failed to create posts: %w", err)
		}
		posts = append(posts, post)
	}
	middleware.Logger.Info("posts created", "count", len(posts))

	commentCount := 0
	for _, post := range posts {
		for i := 0; i < factory.rand.Intn(5); i++ {
			author := users[factory.rand.Intn(len(users))]
			if _, err := factory.CreateComment(author, post); err != nil {
				return fmt.Errorf("failed to create comments: %w", err)
			}
			commentCount++
		}
	}
	middleware.Logger.Info("comments created", "count", commentCount)

	middleware.Logger.Info("database seeding complete")
	return nil
}

// pickTags selects up to three distinct tags for a post.
func pickTags(f *Factory, tags []models.Tag) []models.Tag {
	n := f.rand.Intn(4)
	if n == 0 {
		return nil
	}
	picked := make([]models.Tag, 0, n)
	seen := make(map[uint]bool, n)
	for len(picked) < n {
		tag := tags[f.rand.Intn(len(tags))]
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		picked = append(picked, tag)
	}
	return picked
}

// clearData removes all rows created by previous seed runs. Hard deletes, so
// soft-deleted rows go too.
func clearData(db *gorm.DB) error {
	statements := []string{
		"DELETE FROM post_tags",
		"DELETE FROM comments",
		"DELETE FROM posts",
		"DELETE FROM tags",
		"DELETE FROM users",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
