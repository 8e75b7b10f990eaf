package server

import (
	"inkwell/internal/models"
	"inkwell/internal/serializer"

	"github.com/gofiber/fiber/v2"
)

type tagRequest struct {
	Name string `json:"name"`
}

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	ctx := c.Context()

	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.Tags(tags))
}

// GetTag handles GET /api/tags/:id
func (s *Server) GetTag(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "Tag", id, err)
	}

	return c.JSON(serializer.Tag(tag))
}

// CreateTag handles POST /api/tags. Names are unique regardless of case; a
// duplicate comes back as a 400 with the message attached to the name field.
func (s *Server) CreateTag(c *fiber.Ctx) error {
	ctx := c.Context()

	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError("name", "This field is required."))
	}

	tag := &models.Tag{Name: req.Name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return s.respondRepoError(c, "Tag", 0, err)
	}

	return c.Status(fiber.StatusCreated).JSON(serializer.Tag(tag))
}

// UpdateTag handles PUT/PATCH /api/tags/:id
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "Tag", id, err)
	}

	if req.Name != "" {
		tag.Name = req.Name
	}

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return s.respondRepoError(c, "Tag", id, err)
	}

	return c.JSON(serializer.Tag(tag))
}

// DeleteTag handles DELETE /api/tags/:id. Tagged posts are detached, never
// deleted.
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if _, err := s.tagRepo.GetByID(ctx, id); err != nil {
		return s.respondRepoError(c, "Tag", id, err)
	}

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return s.respondRepoError(c, "Tag", id, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
