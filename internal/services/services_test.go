package services

import (
	"context"
	"testing"
	"time"

	"github.com/amayhq/amayai/internal/ai"
	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.EmailTriage{},
		&models.Meeting{},
		&models.Task{},
		&models.Suggestion{},
		&models.SystemLog{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		GoogleID:     "google-" + uuid.NewString(),
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakeMail is a func-field MailProvider fake.
type fakeMail struct {
	listUnread func(ctx context.Context, tok *oauth2.Token, max int64) ([]google.Email, error)
	sendReply  func(ctx context.Context, tok *oauth2.Token, to, subject, body, threadID string) error
	archive    func(ctx context.Context, tok *oauth2.Token, messageID string) error
}

func (f *fakeMail) ListUnread(ctx context.Context, tok *oauth2.Token, max int64) ([]google.Email, error) {
	if f.listUnread != nil {
		return f.listUnread(ctx, tok, max)
	}
	return nil, nil
}

func (f *fakeMail) SendReply(ctx context.Context, tok *oauth2.Token, to, subject, body, threadID string) error {
	if f.sendReply != nil {
		return f.sendReply(ctx, tok, to, subject, body, threadID)
	}
	return nil
}

func (f *fakeMail) Archive(ctx context.Context, tok *oauth2.Token, messageID string) error {
	if f.archive != nil {
		return f.archive(ctx, tok, messageID)
	}
	return nil
}

// fakeCalendar is a func-field CalendarProvider fake.
type fakeCalendar struct {
	listEvents  func(ctx context.Context, tok *oauth2.Token, from, to time.Time, max int64) ([]google.Event, error)
	createEvent func(ctx context.Context, tok *oauth2.Token, in google.EventInput) (*google.Event, error)
	freeBusy    func(ctx context.Context, tok *oauth2.Token, emails []string, from, to time.Time) (map[string][]google.BusyInterval, error)
}

func (f *fakeCalendar) ListEvents(ctx context.Context, tok *oauth2.Token, from, to time.Time, max int64) ([]google.Event, error) {
	if f.listEvents != nil {
		return f.listEvents(ctx, tok, from, to, max)
	}
	return nil, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, tok *oauth2.Token, in google.EventInput) (*google.Event, error) {
	if f.createEvent != nil {
		return f.createEvent(ctx, tok, in)
	}
	return &google.Event{ID: "event-1", Title: in.Title, Start: in.Start, End: in.End}, nil
}

func (f *fakeCalendar) FreeBusy(ctx context.Context, tok *oauth2.Token, emails []string, from, to time.Time) (map[string][]google.BusyInterval, error) {
	if f.freeBusy != nil {
		return f.freeBusy(ctx, tok, emails, from, to)
	}
	return map[string][]google.BusyInterval{}, nil
}

// fakeTasks is a func-field TaskProvider fake.
type fakeTasks struct {
	createTask   func(ctx context.Context, tok *oauth2.Token, title, notes string, due *time.Time) (string, error)
	completeTask func(ctx context.Context, tok *oauth2.Token, taskID string) error
}

func (f *fakeTasks) CreateTask(ctx context.Context, tok *oauth2.Token, title, notes string, due *time.Time) (string, error) {
	if f.createTask != nil {
		return f.createTask(ctx, tok, title, notes, due)
	}
	return "gtask-1", nil
}

func (f *fakeTasks) CompleteTask(ctx context.Context, tok *oauth2.Token, taskID string) error {
	if f.completeTask != nil {
		return f.completeTask(ctx, tok, taskID)
	}
	return nil
}

// fakeAssistant is a func-field ai.Assistant fake.
type fakeAssistant struct {
	classify    func(ctx context.Context, sender, subject, body string) (*ai.EmailClassification, error)
	draftReply  func(ctx context.Context, sender, subject, body, replyType, instructions string) (string, error)
	suggestions func(ctx context.Context, uctx ai.UserContext) ([]ai.SuggestionDraft, error)
	draftTask   func(ctx context.Context, prompt string) (*ai.TaskDraft, error)
}

func (f *fakeAssistant) ClassifyEmail(ctx context.Context, sender, subject, body string) (*ai.EmailClassification, error) {
	if f.classify != nil {
		return f.classify(ctx, sender, subject, body)
	}
	return &ai.EmailClassification{
		Classification:   models.ClassificationNormal,
		Confidence:       0.9,
		Summary:          "summary",
		SuggestedReplies: []string{"a", "b", "c"},
		Priority:         5,
	}, nil
}

func (f *fakeAssistant) DraftReply(ctx context.Context, sender, subject, body, replyType, instructions string) (string, error) {
	if f.draftReply != nil {
		return f.draftReply(ctx, sender, subject, body, replyType, instructions)
	}
	return "drafted reply", nil
}

func (f *fakeAssistant) GenerateSuggestions(ctx context.Context, uctx ai.UserContext) ([]ai.SuggestionDraft, error) {
	if f.suggestions != nil {
		return f.suggestions(ctx, uctx)
	}
	return nil, nil
}

func (f *fakeAssistant) DraftTask(ctx context.Context, prompt string) (*ai.TaskDraft, error) {
	if f.draftTask != nil {
		return f.draftTask(ctx, prompt)
	}
	return &ai.TaskDraft{Title: "drafted", Priority: models.PriorityNormal}, nil
}

// fakeHub records broadcast events.
type fakeHub struct {
	events []broadcastEvent
}

type broadcastEvent struct {
	userID    uuid.UUID
	eventType string
	data      any
}

func (f *fakeHub) Broadcast(userID uuid.UUID, eventType string, data any) {
	f.events = append(f.events, broadcastEvent{userID: userID, eventType: eventType, data: data})
}

func (f *fakeHub) typesFor(userID uuid.UUID) []string {
	var types []string
	for _, e := range f.events {
		if e.userID == userID {
			types = append(types, e.eventType)
		}
	}
	return types
}

// fakeNotifier records Slack sends and optionally fails them.
type fakeNotifier struct {
	reminders []string
	meetings  []string
	err       error
}

func (f *fakeNotifier) SendTaskReminder(_ context.Context, email, taskTitle string, _ *time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.reminders = append(f.reminders, email+":"+taskTitle)
	return nil
}

func (f *fakeNotifier) SendMeetingNotification(_ context.Context, email, meetingTitle string, _ time.Time, _ []string) error {
	if f.err != nil {
		return f.err
	}
	f.meetings = append(f.meetings, email+":"+meetingTitle)
	return nil
}
