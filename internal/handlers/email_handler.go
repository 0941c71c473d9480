package handlers

import (
	"errors"
	"log/slog"

	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EmailHandler struct {
	authService   *services.AuthService
	triageService *services.TriageService
}

func NewEmailHandler(authService *services.AuthService, triageService *services.TriageService) *EmailHandler {
	return &EmailHandler{authService: authService, triageService: triageService}
}

// Triage runs a triage pass over unread mail and returns the full history.
func (h *EmailHandler) Triage(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	triages, err := h.triageService.RunTriage(c.Context(), user)
	if err != nil {
		return triageError(c, err)
	}
	return c.JSON(triages)
}

// Reply sends a drafted or custom reply on the message's thread.
func (h *EmailHandler) Reply(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.MessageID == "" {
		return badRequest(c, "messageId is required")
	}
	switch req.ReplyType {
	case dto.ReplyApprove, dto.ReplyDecline, dto.ReplyRequestInfo, dto.ReplyScheduleMeeting, dto.ReplyCustom:
	default:
		return badRequest(c, "Invalid replyType")
	}

	if err := h.triageService.SendReply(c.Context(), user, req); err != nil {
		return triageError(c, err)
	}
	return c.JSON(dto.ReplyResponse{Success: true, Message: "Reply sent"})
}

// Archive removes the message from the inbox.
func (h *EmailHandler) Archive(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.MessageID == "" {
		return badRequest(c, "messageId is required")
	}

	if err := h.triageService.Archive(c.Context(), user, req.MessageID); err != nil {
		return triageError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func triageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrGoogleNotConnected):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrTriageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		slog.Error("email operation failed", "path", c.Path(), "error", err)
		return internalError(c)
	}
}
