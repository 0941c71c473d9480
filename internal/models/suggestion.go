package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Well-known suggestion types. The vocabulary is open ended; the model may
// return types outside this list and they are persisted as-is.
const (
	SuggestionEmailFollowUp        = "email_follow_up"
	SuggestionMeetingPreparation   = "meeting_preparation"
	SuggestionTaskReminder         = "task_reminder"
	SuggestionScheduleOptimization = "schedule_optimization"
)

// Suggestion is a generated recommendation. Accepted and Dismissed are
// independent flags; both false means pending.
type Suggestion struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        string         `gorm:"not null;size:50" json:"type"`
	Title       string         `gorm:"not null;size:500" json:"title"`
	Description string         `gorm:"not null;type:text" json:"description"`
	ActionData  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"action_data"`
	Accepted    bool           `gorm:"default:false" json:"accepted"`
	Dismissed   bool           `gorm:"default:false" json:"dismissed"`
	CreatedAt   time.Time      `json:"created_at"`
}
