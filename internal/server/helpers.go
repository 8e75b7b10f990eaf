package server

import (
	"errors"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondRepoError maps repository errors onto HTTP responses: missing rows
// become 404, field validation errors become 400 with the {field: [messages]}
// body, everything else is a 500.
func (s *Server) respondRepoError(c *fiber.Ctx, resource string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(resource, id))
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
