package handlers

import (
	"errors"
	"log/slog"

	"github.com/amayhq/amayai/internal/ai"
	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TaskHandler struct {
	authService *services.AuthService
	taskService *services.TaskService
}

func NewTaskHandler(authService *services.AuthService, taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{authService: authService, taskService: taskService}
}

// List returns the user's tasks.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	tasks, err := h.taskService.List(user.ID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(tasks)
}

// Create adds a task, mirrored into Google Tasks.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "title is required")
	}

	task, err := h.taskService.Create(c.Context(), user, req)
	if err != nil {
		return taskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// Update patches a task; completing it stamps completed_at and syncs Google.
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid task id")
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.taskService.Update(c.Context(), user, taskID, req)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(task)
}

// AICreate drafts a task from a freeform prompt without persisting it.
func (h *TaskHandler) AICreate(c *fiber.Ctx) error {
	if _, err := currentUser(c, h.authService); err != nil {
		return unauthorized(c)
	}

	var req dto.AICreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Prompt == "" {
		return badRequest(c, "prompt is required")
	}

	draft, err := h.taskService.Draft(c.Context(), req.Prompt)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(draft)
}

// ApproveDraft persists a previously returned AI draft.
func (h *TaskHandler) ApproveDraft(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var draft ai.TaskDraft
	if err := c.BodyParser(&draft); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if draft.Title == "" {
		return badRequest(c, "title is required")
	}

	task, err := h.taskService.ApproveDraft(c.Context(), user, draft)
	if err != nil {
		return taskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// SlackReminder DMs the task owner on Slack.
func (h *TaskHandler) SlackReminder(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SlackReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		return badRequest(c, "Invalid taskId")
	}

	if err := h.taskService.SendReminder(c.Context(), user, taskID); err != nil {
		return taskError(c, err)
	}
	return c.JSON(dto.SlackReminderResponse{Success: true, Message: "Reminder sent"})
}

func taskError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrGoogleNotConnected):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		slog.Error("task operation failed", "path", c.Path(), "error", err)
		return internalError(c)
	}
}
