package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// Notifier relays dashboard notifications to Slack DMs. Recipients are
// resolved from their email address.
type Notifier interface {
	SendTaskReminder(ctx context.Context, email, taskTitle string, dueDate *time.Time) error
	SendMeetingNotification(ctx context.Context, email, meetingTitle string, startTime time.Time, attendees []string) error
}

type notifier struct {
	api *slack.Client
}

// NewNotifier returns a Slack notifier, or a logging no-op when no bot token
// is configured so the rest of the dashboard keeps working.
func NewNotifier(botToken string) Notifier {
	if botToken == "" {
		slog.Warn("SLACK_BOT_TOKEN not set, slack notifications disabled")
		return disabledNotifier{}
	}
	return &notifier{api: slack.New(botToken)}
}

func (n *notifier) sendDM(ctx context.Context, email, message string) error {
	user, err := n.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return fmt.Errorf("slack user not found for %s: %w", email, err)
	}

	channel, _, _, err := n.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{user.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}

	if _, _, err := n.api.PostMessageContext(ctx, channel.ID, slack.MsgOptionText(message, false)); err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	return nil
}

func (n *notifier) SendTaskReminder(ctx context.Context, email, taskTitle string, dueDate *time.Time) error {
	msg := fmt.Sprintf("⏰ Task Reminder: %q", taskTitle)
	if dueDate != nil {
		msg += fmt.Sprintf(" (due %s)", dueDate.Format("Mon Jan 2 15:04"))
	}
	return n.sendDM(ctx, email, msg)
}

func (n *notifier) SendMeetingNotification(ctx context.Context, email, meetingTitle string, startTime time.Time, attendees []string) error {
	msg := fmt.Sprintf("📅 Meeting scheduled: %q at %s", meetingTitle, startTime.Format("Mon Jan 2 15:04"))
	if len(attendees) > 0 {
		msg += "\nAttendees: " + strings.Join(attendees, ", ")
	}
	return n.sendDM(ctx, email, msg)
}

type disabledNotifier struct{}

func (disabledNotifier) SendTaskReminder(_ context.Context, email, taskTitle string, _ *time.Time) error {
	slog.Info("slack disabled, skipping task reminder", "email", email, "task", taskTitle)
	return nil
}

func (disabledNotifier) SendMeetingNotification(_ context.Context, email, meetingTitle string, _ time.Time, _ []string) error {
	slog.Info("slack disabled, skipping meeting notification", "email", email, "meeting", meetingTitle)
	return nil
}
