package services

import (
	"context"
	"errors"
	"time"

	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Shared sentinel errors surfaced by the services and mapped to HTTP statuses
// in the handlers.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrGoogleNotConnected = errors.New("user not authenticated with Google")
	ErrTriageNotFound     = errors.New("email triage not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrDomainNotAllowed   = errors.New("email domain not allowed")
)

// MailProvider is the Gmail surface the triage sequencer depends on.
type MailProvider interface {
	ListUnread(ctx context.Context, tok *oauth2.Token, max int64) ([]google.Email, error)
	SendReply(ctx context.Context, tok *oauth2.Token, to, subject, body, threadID string) error
	Archive(ctx context.Context, tok *oauth2.Token, messageID string) error
}

// CalendarProvider is the Calendar surface the scheduler and slot finder use.
type CalendarProvider interface {
	ListEvents(ctx context.Context, tok *oauth2.Token, from, to time.Time, max int64) ([]google.Event, error)
	CreateEvent(ctx context.Context, tok *oauth2.Token, in google.EventInput) (*google.Event, error)
	FreeBusy(ctx context.Context, tok *oauth2.Token, emails []string, from, to time.Time) (map[string][]google.BusyInterval, error)
}

// TaskProvider mirrors local tasks into Google Tasks.
type TaskProvider interface {
	CreateTask(ctx context.Context, tok *oauth2.Token, title, notes string, due *time.Time) (string, error)
	CompleteTask(ctx context.Context, tok *oauth2.Token, taskID string) error
}

// Broadcaster pushes live-update events to a user's open dashboard
// connection. Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(userID uuid.UUID, eventType string, data any)
}

// googleToken rebuilds the user's stored Google token with its real expiry
// so the oauth2 client refreshes it when stale.
func googleToken(user *models.User) *oauth2.Token {
	return google.Token(user.AccessToken, user.RefreshToken, user.TokenExpiry)
}
