package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Meeting statuses.
const (
	MeetingStatusPending   = "pending"
	MeetingStatusScheduled = "scheduled"
	MeetingStatusCompleted = "completed"
	MeetingStatusCancelled = "cancelled"
)

// Meeting is the local mirror of a Google Calendar event created through the
// scheduler. HasConflicts records the free/busy result at creation time; it is
// informational only and never blocks event creation.
type Meeting struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string         `gorm:"not null;size:500" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	StartTime    time.Time      `gorm:"not null" json:"start_time"`
	EndTime      time.Time      `gorm:"not null" json:"end_time"`
	Attendees    datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"attendees"`
	HasConflicts bool           `gorm:"default:false" json:"has_conflicts"`
	Status       string         `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}
