package serializer

import (
	"inkwell/internal/models"
)

// userSchema is the brief user rendering nested inside posts and comments.
var userSchema = NewSchema(
	Always("id", func(u *models.User) any { return u.ID }),
	Always("username", func(u *models.User) any { return u.Username }),
	Always("email", func(u *models.User) any { return u.Email }),
	Always("first_name", func(u *models.User) any { return u.FirstName }),
	Always("last_name", func(u *models.User) any { return u.LastName }),
)

var tagSchema = NewSchema(
	Always("id", func(t *models.Tag) any { return t.ID }),
	Always("name", func(t *models.Tag) any { return t.Name }),
)

// commentSchema renders the post relation as its bare ID; the author is
// always expanded with the brief user rendering.
var commentSchema = NewSchema(
	Always("id", func(c *models.Comment) any { return c.ID }),
	Always("text", func(c *models.Comment) any { return c.Text }),
	Always("user", func(c *models.Comment) any { return userSchema.Render(&c.User, Include{}) }),
	Always("post", func(c *models.Comment) any { return c.PostID }),
	Always("created_at", func(c *models.Comment) any { return c.CreatedAt }),
	Always("updated_at", func(c *models.Comment) any { return c.UpdatedAt }),
)

// postSchema declares the optional relational fields {user, tags, comments}.
// Nested relations render with their own default schema; the top-level
// include never propagates.
var postSchema = NewSchema(
	Always("id", func(p *models.Post) any { return p.ID }),
	Always("title", func(p *models.Post) any { return p.Title }),
	Always("content", func(p *models.Post) any { return p.Content }),
	Always("status", func(p *models.Post) any { return p.Status }),
	Optional("user", func(p *models.Post) any { return userSchema.Render(&p.User, Include{}) }),
	Optional("tags", func(p *models.Post) any { return renderTags(p.Tags) }),
	Optional("comments", func(p *models.Post) any { return renderComments(p.Comments) }),
	Always("created_at", func(p *models.Post) any { return p.CreatedAt }),
	Always("updated_at", func(p *models.Post) any { return p.UpdatedAt }),
)

// userDetailSchema is the top-level user rendering with optional expansions
// {posts, comments}.
var userDetailSchema = NewSchema(
	Always("id", func(u *models.User) any { return u.ID }),
	Always("username", func(u *models.User) any { return u.Username }),
	Always("email", func(u *models.User) any { return u.Email }),
	Always("first_name", func(u *models.User) any { return u.FirstName }),
	Always("last_name", func(u *models.User) any { return u.LastName }),
	Optional("posts", func(u *models.User) any { return renderPosts(u.Posts) }),
	Optional("comments", func(u *models.User) any { return renderComments(u.Comments) }),
)

func renderTags(tags []models.Tag) []Object {
	out := make([]Object, 0, len(tags))
	for i := range tags {
		out = append(out, tagSchema.Render(&tags[i], Include{}))
	}
	return out
}

func renderComments(comments []models.Comment) []Object {
	out := make([]Object, 0, len(comments))
	for i := range comments {
		out = append(out, commentSchema.Render(&comments[i], Include{}))
	}
	return out
}

func renderPosts(posts []models.Post) []Object {
	out := make([]Object, 0, len(posts))
	for i := range posts {
		out = append(out, postSchema.Render(&posts[i], Include{}))
	}
	return out
}

// Post renders a single post honoring the include set.
func Post(p *models.Post, inc Include) Object { return postSchema.Render(p, inc) }

// Posts renders a post collection honoring the include set per item.
func Posts(ps []*models.Post, inc Include) []Object { return postSchema.RenderList(ps, inc) }

// UserDetail renders a single user honoring the include set.
func UserDetail(u *models.User, inc Include) Object { return userDetailSchema.Render(u, inc) }

// UserDetails renders a user collection honoring the include set per item.
func UserDetails(us []*models.User, inc Include) []Object { return userDetailSchema.RenderList(us, inc) }

// Tag renders a single tag.
func Tag(t *models.Tag) Object { return tagSchema.Render(t, Include{}) }

// Tags renders a tag collection.
func Tags(ts []*models.Tag) []Object { return tagSchema.RenderList(ts, Include{}) }

// Comment renders a single comment.
func Comment(c *models.Comment) Object { return commentSchema.Render(c, Include{}) }

// Comments renders a comment collection.
func Comments(cs []*models.Comment) []Object { return commentSchema.RenderList(cs, Include{}) }
