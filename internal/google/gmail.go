package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Email is a fetched Gmail message reduced to the fields the triage pass uses.
type Email struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Sender   string `json:"sender"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Body     string `json:"body"`
}

func (c *Client) gmailService(ctx context.Context, tok *oauth2.Token) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(c.httpClient(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return svc, nil
}

// ListUnread fetches up to max unread messages from the user's inbox.
func (c *Client) ListUnread(ctx context.Context, tok *oauth2.Token, max int64) ([]Email, error) {
	svc, err := c.gmailService(ctx, tok)
	if err != nil {
		return nil, err
	}

	list, err := svc.Users.Messages.List("me").Q("is:unread").MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]Email, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", m.Id).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %s: %w", m.Id, err)
		}

		email := Email{
			ID:       msg.Id,
			ThreadID: msg.ThreadId,
			Body:     extractBody(msg.Payload),
		}
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				email.Sender = h.Value
			case "Subject":
				email.Subject = h.Value
			case "Date":
				email.Date = h.Value
			}
		}
		emails = append(emails, email)
	}

	return emails, nil
}

// SendReply sends a plain-text reply threaded onto the original conversation.
func (c *Client) SendReply(ctx context.Context, tok *oauth2.Token, to, subject, body, threadID string) error {
	svc, err := c.gmailService(ctx, tok)
	if err != nil {
		return err
	}

	msg := &gmail.Message{
		Raw:      encodeRawEmail(to, subject, body, threadID),
		ThreadId: threadID,
	}
	if _, err := svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// Archive marks a message read and removes it from the inbox.
func (c *Client) Archive(ctx context.Context, tok *oauth2.Token, messageID string) error {
	svc, err := c.gmailService(ctx, tok)
	if err != nil {
		return err
	}

	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD", "INBOX"}}
	if _, err := svc.Users.Messages.Modify("me", messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to archive message %s: %w", messageID, err)
	}
	return nil
}

func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if payload.Body != nil && payload.Body.Data != "" {
		if b, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(b)
		}
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			if b, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
				return string(b)
			}
		}
	}
	return ""
}

func encodeRawEmail(to, subject, body, threadID string) string {
	headers := []string{
		"To: " + to,
		"Subject: " + subject,
		"Content-Type: text/plain; charset=UTF-8",
		"MIME-Version: 1.0",
	}
	if threadID != "" {
		headers = append(headers, "In-Reply-To: "+threadID, "References: "+threadID)
	}

	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + body
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}
