package dto

import (
	"time"

	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
)

type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type CreateMeetingRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     time.Time  `json:"endTime"`
	Attendees   []Attendee `json:"attendees"`
}

type CreateMeetingResponse struct {
	Meeting       *models.Meeting `json:"meeting"`
	CalendarEvent *google.Event   `json:"calendarEvent"`
	HasConflicts  bool            `json:"hasConflicts"`
}

type FindFreeTimeRequest struct {
	DurationMinutes int `json:"durationMinutes"`
	DaysAhead       int `json:"daysAhead"`
}

type FreeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
