package handlers

import (
	"github.com/amayhq/amayai/internal/middleware"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Get returns the dashboard headline counters.
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	stats, err := h.statsService.Stats(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(stats)
}
