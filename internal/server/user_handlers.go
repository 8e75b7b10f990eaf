package server

import (
	"inkwell/internal/models"
	"inkwell/internal/serializer"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users?include=...
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	inc := serializer.ParseInclude(c.Query("include"))

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.UserDetails(users, inc))
}

// GetUser handles GET /api/users/:id?include=...
func (s *Server) GetUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	inc := serializer.ParseInclude(c.Query("include"))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return s.respondRepoError(c, "User", id, err)
	}

	return c.JSON(serializer.UserDetail(user, inc))
}

// UserWriteNotAllowed answers every write verb on the user collection with
// 405. Accounts are created and removed by the identity subsystem, not
// through this API.
func (s *Server) UserWriteNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "GET, HEAD")
	return models.RespondWithError(c, fiber.StatusMethodNotAllowed,
		models.NewMethodNotAllowedError("user"))
}
