package server

import (
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/serializer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// commentRequest is the write payload for comments. The author never comes
// from the body; it is always the authenticated caller.
type commentRequest struct {
	Text string `json:"text"`
	Post uint   `json:"post"`
}

// GetComments handles GET /api/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()

	comments, err := s.commentRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.Comments(comments))
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "Comment", id, err)
	}

	return c.JSON(serializer.Comment(comment))
}

// CreateComment handles POST /api/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Text == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError("text", "This field is required."))
	}

	if _, err := s.postRepo.GetByID(ctx, req.Post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewFieldValidationError("post", fmt.Sprintf("Invalid post %d - object does not exist.", req.Post)))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	comment := &models.Comment{
		Text:   req.Text,
		PostID: req.Post,
		UserID: userID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload with the author for the response
	comment, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(serializer.Comment(comment))
}

// UpdateComment handles PUT/PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "Comment", id, err)
	}

	if comment.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only update your own comments"))
	}

	if req.Text != "" {
		comment.Text = req.Text
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.Comment(comment))
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "Comment", id, err)
	}

	if comment.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own comments"))
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return s.respondRepoError(c, "Comment", id, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
