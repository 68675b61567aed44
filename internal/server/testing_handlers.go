package server

import (
	"log/slog"

	"bloglist/internal/database"
	"bloglist/internal/middleware"
	"bloglist/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ResetTestingData handles POST /api/testing/reset. It is only routed when APP_ENV=test.
func (s *Server) ResetTestingData(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := database.Reset(ctx, s.db); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	if err := s.cache.Flush(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "cache flush after reset failed", slog.String("error", err.Error()))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
