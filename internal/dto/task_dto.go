package dto

import "time"

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    string     `json:"priority,omitempty"`
}

// UpdateTaskRequest uses pointers so absent fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

type AICreateTaskRequest struct {
	Prompt string `json:"prompt"`
}

type SlackReminderRequest struct {
	TaskID string `json:"taskId"`
}

type SlackReminderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
