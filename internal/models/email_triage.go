package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Classification labels produced by the email assistant.
const (
	ClassificationUrgent = "urgent"
	ClassificationNormal = "normal"
	ClassificationLow    = "low"
	ClassificationSpam   = "spam"
)

// EmailTriage is one stored classification result per Gmail message.
// At most one row exists per message id; the unique index makes the
// check-then-insert in the triage pass safe under concurrent polling.
type EmailTriage struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	MessageID        string         `gorm:"not null;size:255;uniqueIndex" json:"message_id"`
	ThreadID         string         `gorm:"size:255" json:"thread_id"`
	Sender           string         `gorm:"not null;size:500" json:"sender"`
	Subject          string         `gorm:"not null;size:1000" json:"subject"`
	Classification   string         `gorm:"not null;size:20" json:"classification"`
	AISummary        string         `gorm:"type:text" json:"ai_summary"`
	SuggestedReplies datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"suggested_replies"`
	Processed        bool           `gorm:"default:false" json:"processed"`
	CreatedAt        time.Time      `json:"created_at"`
}
