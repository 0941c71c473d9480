package handlers

import (
	"errors"
	"log/slog"

	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SuggestionHandler struct {
	authService       *services.AuthService
	suggestionService *services.SuggestionService
}

func NewSuggestionHandler(authService *services.AuthService, suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{authService: authService, suggestionService: suggestionService}
}

// List returns the user's suggestions.
func (h *SuggestionHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	suggestions, err := h.suggestionService.List(user.ID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(suggestions)
}

// Generate runs the assistant over the user's recent activity and persists
// what it proposes.
func (h *SuggestionHandler) Generate(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	suggestions, err := h.suggestionService.Generate(c.Context(), user)
	if err != nil {
		slog.Error("suggestion generation failed", "user_id", user.ID, "error", err)
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(suggestions)
}

// Update patches the accepted/dismissed flags.
func (h *SuggestionHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	suggestionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid suggestion id")
	}

	var req dto.UpdateSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	suggestion, err := h.suggestionService.Update(user.ID, suggestionID, req)
	if err != nil {
		if errors.Is(err, services.ErrSuggestionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c)
	}
	return c.JSON(suggestion)
}
