package server

import (
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/serializer"

	"github.com/gofiber/fiber/v2"
)

// postRequest is the write payload for posts. The author never comes from the
// body; it is always the authenticated caller.
type postRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Status  string  `json:"status"`
	TagIDs  *[]uint `json:"tag_ids"`
}

// GetPosts handles GET /api/posts?status=...&include=...
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	inc := serializer.ParseInclude(c.Query("include"))

	posts, err := s.postRepo.List(ctx, repository.PostFilter{Status: c.Query("status")})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.Posts(posts, inc))
}

// GetPost handles GET /api/posts/:id?include=...
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	inc := serializer.ParseInclude(c.Query("include"))

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "Post", id, err)
	}

	return c.JSON(serializer.Post(post, inc))
}

// GetPostComments handles GET /api/posts/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if _, err := s.postRepo.GetByID(ctx, id); err != nil {
		return s.respondRepoError(c, "Post", id, err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.Comments(comments))
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	status := models.PostStatus(req.Status)
	if req.Status == "" {
		status = models.StatusDraft
	} else if !status.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError("status", fmt.Sprintf("%q is not a valid status.", req.Status)))
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		Status:  status,
		UserID:  userID,
	}

	if req.TagIDs != nil {
		tags, err := s.tagRepo.GetByIDs(ctx, *req.TagIDs)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		post.Tags = tags
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload with relations for the response
	post, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	inc := serializer.ParseInclude(c.Query("include"))
	return c.Status(fiber.StatusCreated).JSON(serializer.Post(post, inc))
}

// UpdatePost handles PUT/PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return s.respondRepoError(c, "Post", postID, err)
	}

	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only update your own posts"))
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Status != "" {
		status := models.PostStatus(req.Status)
		if !status.Valid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewFieldValidationError("status", fmt.Sprintf("%q is not a valid status.", req.Status)))
		}
		post.Status = status
	}

	if req.TagIDs != nil {
		tags, err := s.tagRepo.GetByIDs(ctx, *req.TagIDs)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		post.Tags = tags
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	inc := serializer.ParseInclude(c.Query("include"))
	return c.JSON(serializer.Post(post, inc))
}

// DeletePost handles DELETE /api/posts/:id. Comments go down with the post;
// tags are shared and survive.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return s.respondRepoError(c, "Post", postID, err)
	}

	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own posts"))
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return s.respondRepoError(c, "Post", postID, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
