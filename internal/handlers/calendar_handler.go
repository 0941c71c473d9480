package handlers

import (
	"errors"
	"log/slog"

	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CalendarHandler struct {
	authService     *services.AuthService
	calendarService *services.CalendarService
}

func NewCalendarHandler(authService *services.AuthService, calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{authService: authService, calendarService: calendarService}
}

// Events lists upcoming events from the primary calendar.
func (h *CalendarHandler) Events(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	events, err := h.calendarService.ListEvents(c.Context(), user)
	if err != nil {
		return calendarError(c, err)
	}
	return c.JSON(events)
}

// ScheduleMeeting creates a calendar event with a conflict check and mirrors
// it locally.
func (h *CalendarHandler) ScheduleMeeting(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "title is required")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return badRequest(c, "startTime and endTime are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return badRequest(c, "endTime must be after startTime")
	}

	resp, err := h.calendarService.CreateMeeting(c.Context(), user, req)
	if err != nil {
		return calendarError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// FindFreeTime returns open business-hours slots over the next days.
func (h *CalendarHandler) FindFreeTime(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.FindFreeTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	slots, err := h.calendarService.FindFreeTime(c.Context(), user, req.DurationMinutes, req.DaysAhead)
	if err != nil {
		return calendarError(c, err)
	}
	return c.JSON(fiber.Map{"slots": slots})
}

func calendarError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrGoogleNotConnected) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	slog.Error("calendar operation failed", "path", c.Path(), "error", err)
	return internalError(c)
}
