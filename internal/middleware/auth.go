package middleware

import (
	"errors"

	"github.com/amayhq/amayai/internal/config"
	"github.com/amayhq/amayai/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no authenticated session")

// Protected rejects requests without a valid session token from the OAuth
// callback.
func Protected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired session",
			})
		},
	})
}

// UserID resolves the session subject claim set by Protected.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrNoSession
	}
	return id, nil
}
