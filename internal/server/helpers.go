package server

import (
	"context"
	"errors"
	"log/slog"

	"bloglist/internal/middleware"
	"bloglist/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already committed the response. Handlers
// return nil when they see it so the ErrorHandler does not overwrite the body.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint. On failure it writes a 400
// JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("malformatted id"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUser verifies the request's bearer token and resolves its user. An invalid
// token is answered with 401; any other failure is written through respond. Either way
// it returns errResponseWritten.
func (s *Server) currentUser(c *fiber.Ctx, respond func(*fiber.Ctx, error) error) (*models.User, error) {
	user, err := s.userService.Authenticate(c.UserContext(), middleware.TokenFrom(c))
	if err != nil {
		_ = respond(c, err)
		return nil, errResponseWritten
	}

	c.Locals("userID", user.ID)
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID))
	return user, nil
}

// respondError writes err with its mapped status.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// respondWriteError is respondError for blog create and delete, where server-side
// failures are reported as 400.
func respondWriteError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "blog write failed", slog.String("error", err.Error()))
		status = fiber.StatusBadRequest
	}
	return models.RespondWithError(c, status, err)
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("invalid request body"))
}
