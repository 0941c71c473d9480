package handlers

import (
	"errors"

	"github.com/amayhq/amayai/internal/config"
	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/middleware"
	"github.com/amayhq/amayai/internal/models"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// GoogleLogin redirects the browser to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	url, err := h.authService.AuthURL()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to start Google login",
		})
	}
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the OAuth flow and redirects back to the dashboard
// with a session token, or with auth=error when anything went wrong.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if c.Query("error") != "" {
		return c.Redirect(h.cfg.DashboardURL+"?auth=error", fiber.StatusTemporaryRedirect)
	}
	if err := h.authService.VerifyState(c.Query("state")); err != nil {
		return c.Redirect(h.cfg.DashboardURL+"?auth=error", fiber.StatusTemporaryRedirect)
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect(h.cfg.DashboardURL+"?auth=error", fiber.StatusTemporaryRedirect)
	}

	_, token, err := h.authService.HandleCallback(c.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrDomainNotAllowed) {
			return c.Redirect(h.cfg.DashboardURL+"?auth=forbidden", fiber.StatusTemporaryRedirect)
		}
		return c.Redirect(h.cfg.DashboardURL+"?auth=error", fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(h.cfg.DashboardURL+"?auth=success&token="+token, fiber.StatusTemporaryRedirect)
}

// Status reports whether the session resolves to a known user.
func (h *AuthHandler) Status(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.JSON(dto.AuthStatusResponse{Authenticated: false})
	}
	return c.JSON(dto.AuthStatusResponse{
		Authenticated: true,
		User: &dto.UserResponse{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Preferences: user.Preferences,
		},
	})
}

// Logout is a no-op server side; sessions are stateless JWTs the client
// discards.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

// currentUser resolves the session claims to the stored user row.
func currentUser(c *fiber.Ctx, authService *services.AuthService) (*models.User, error) {
	userID, err := middleware.UserID(c)
	if err != nil {
		return nil, err
	}
	return authService.CurrentUser(userID)
}
