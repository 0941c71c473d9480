package handlers

import (
	"github.com/amayhq/amayai/internal/middleware"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	authService *services.AuthService
}

func NewSettingsHandler(authService *services.AuthService) *SettingsHandler {
	return &SettingsHandler{authService: authService}
}

// Get returns the user's settings document.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	prefs, err := h.authService.Preferences(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(prefs)
}

// Update merges the request body into the stored settings document.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	prefs, err := h.authService.UpdatePreferences(userID, patch)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(prefs)
}
