package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Preferences datatypes.JSON `json:"preferences"`
}

type AuthStatusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}
