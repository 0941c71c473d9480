package models

import (
	"time"

	"github.com/google/uuid"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task mirrors a Google Tasks item plus presentation metadata. CompletedAt is
// derived from the Completed flag: set on the false→true transition, cleared
// on true→false, untouched by no-op updates.
type Task struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title             string     `gorm:"not null;size:500" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	DueDate           *time.Time `json:"due_date"`
	Completed         bool       `gorm:"default:false" json:"completed"`
	Priority          string     `gorm:"size:20;default:'normal'" json:"priority"`
	GoogleTaskID      string     `gorm:"size:255" json:"google_task_id"`
	SlackReminderSent bool       `gorm:"default:false" json:"slack_reminder_sent"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at"`
}
