package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is created on first successful Google login and updated on token refresh.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	GoogleID     string         `gorm:"not null;size:255;uniqueIndex" json:"-"`
	AccessToken  string         `gorm:"type:text" json:"-"`
	RefreshToken string         `gorm:"type:text" json:"-"`
	TokenExpiry  time.Time      `json:"-"`
	Preferences  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"preferences"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
