package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amayhq/amayai/internal/ai"
	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/models"
	"github.com/amayhq/amayai/internal/slack"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService owns the task lifecycle: local rows mirrored into Google Tasks,
// AI drafting from freeform prompts and Slack reminders.
type TaskService struct {
	db        *gorm.DB
	tasks     TaskProvider
	assistant ai.Assistant
	notifier  slack.Notifier
	hub       Broadcaster
}

func NewTaskService(db *gorm.DB, tasks TaskProvider, assistant ai.Assistant, notifier slack.Notifier, hub Broadcaster) *TaskService {
	return &TaskService{db: db, tasks: tasks, assistant: assistant, notifier: notifier, hub: hub}
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

// Pending returns incomplete tasks for the suggestion context bundle.
func (s *TaskService) Pending(userID uuid.UUID, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Where("user_id = ? AND completed = ?", userID, false).
		Order("created_at DESC").Limit(limit).Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending tasks: %w", err)
	}
	return tasks, nil
}

// Create writes the task to Google Tasks first, then mirrors it locally with
// the provider id. A provider failure aborts creation.
func (s *TaskService) Create(ctx context.Context, user *models.User, req dto.CreateTaskRequest) (*models.Task, error) {
	if user.AccessToken == "" {
		return nil, ErrGoogleNotConnected
	}
	if req.Title == "" {
		return nil, errors.New("task title is required")
	}

	priority := req.Priority
	switch priority {
	case models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
	default:
		priority = models.PriorityNormal
	}

	tok := googleToken(user)
	googleID, err := s.tasks.CreateTask(ctx, tok, req.Title, req.Description, req.DueDate)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ID:           uuid.New(),
		UserID:       user.ID,
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Priority:     priority,
		GoogleTaskID: googleID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to store task: %w", err)
	}

	s.hub.Broadcast(user.ID, "task_created", task)
	return &task, nil
}

// Update patches the task. Completing a task stamps CompletedAt and mirrors
// the completion to Google Tasks; a mirror failure is logged, not rolled
// back. Re-opening clears CompletedAt.
func (s *TaskService) Update(ctx context.Context, user *models.User, taskID uuid.UUID, req dto.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.find(user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	justCompleted := false
	if req.Completed != nil && *req.Completed != task.Completed {
		if *req.Completed {
			now := time.Now()
			task.CompletedAt = &now
			justCompleted = true
		} else {
			task.CompletedAt = nil
		}
		task.Completed = *req.Completed
	}

	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if justCompleted && task.GoogleTaskID != "" && user.AccessToken != "" {
		tok := googleToken(user)
		if err := s.tasks.CompleteTask(ctx, tok, task.GoogleTaskID); err != nil {
			slog.Error("failed to complete google task", "task_id", task.ID, "error", err)
		}
	}

	if justCompleted {
		s.hub.Broadcast(user.ID, "task_completed", task)
	}
	return task, nil
}

// Draft turns a freeform prompt into a task draft without persisting it.
func (s *TaskService) Draft(ctx context.Context, prompt string) (*ai.TaskDraft, error) {
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}
	return s.assistant.DraftTask(ctx, prompt)
}

// ApproveDraft persists a previously returned draft as a real task.
func (s *TaskService) ApproveDraft(ctx context.Context, user *models.User, draft ai.TaskDraft) (*models.Task, error) {
	req := dto.CreateTaskRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
	}
	if draft.DueDate != "" {
		due, err := time.Parse(time.RFC3339, draft.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid draft due date %q: %w", draft.DueDate, err)
		}
		req.DueDate = &due
	}
	return s.Create(ctx, user, req)
}

// SendReminder DMs the task owner on Slack and records that the reminder
// went out.
func (s *TaskService) SendReminder(ctx context.Context, user *models.User, taskID uuid.UUID) error {
	task, err := s.find(user.ID, taskID)
	if err != nil {
		return err
	}

	if err := s.notifier.SendTaskReminder(ctx, user.Email, task.Title, task.DueDate); err != nil {
		return err
	}

	if err := s.db.Model(task).Update("slack_reminder_sent", true).Error; err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}
	return nil
}

// CompletedCount returns the number of completed tasks for the stats endpoint.
func (s *TaskService) CompletedCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Task{}).Where("user_id = ? AND completed = ?", userID, true).Count(&count).Error
	return count, err
}

func (s *TaskService) find(userID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &task, nil
}
