package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amayhq/amayai/internal/ai"
	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const triageBatchSize = 10

// TriageService runs the inbox triage pass and the per-message reply and
// archive actions.
type TriageService struct {
	db             *gorm.DB
	mail           MailProvider
	assistant      ai.Assistant
	hub            Broadcaster
	catchAllPrefix string
}

func NewTriageService(db *gorm.DB, mail MailProvider, assistant ai.Assistant, hub Broadcaster, catchAllPrefix string) *TriageService {
	return &TriageService{
		db:             db,
		mail:           mail,
		assistant:      assistant,
		hub:            hub,
		catchAllPrefix: catchAllPrefix,
	}
}

// RunTriage fetches unread mail, classifies every message without an existing
// triage row, persists the verdicts and returns the user's full triage
// history, newest first. Messages carrying the catch-all prefix are skipped.
// A classification failure aborts the pass; rows already written stay.
func (s *TriageService) RunTriage(ctx context.Context, user *models.User) ([]models.EmailTriage, error) {
	if user.AccessToken == "" {
		return nil, ErrGoogleNotConnected
	}
	tok := googleToken(user)

	emails, err := s.mail.ListUnread(ctx, tok, triageBatchSize)
	if err != nil {
		return nil, err
	}

	for _, email := range emails {
		if s.catchAllPrefix != "" && strings.HasPrefix(strings.TrimSpace(email.Subject), s.catchAllPrefix) {
			continue
		}

		var count int64
		if err := s.db.Model(&models.EmailTriage{}).Where("message_id = ?", email.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check triage history: %w", err)
		}
		if count > 0 {
			continue
		}

		verdict, err := s.assistant.ClassifyEmail(ctx, email.Sender, email.Subject, email.Body)
		if err != nil {
			return nil, err
		}

		replies, err := json.Marshal(verdict.SuggestedReplies)
		if err != nil {
			return nil, fmt.Errorf("failed to encode suggested replies: %w", err)
		}

		triage := models.EmailTriage{
			ID:               uuid.New(),
			UserID:           user.ID,
			MessageID:        email.ID,
			ThreadID:         email.ThreadID,
			Sender:           email.Sender,
			Subject:          email.Subject,
			Classification:   verdict.Classification,
			AISummary:        verdict.Summary,
			SuggestedReplies: replies,
		}
		if err := s.db.Create(&triage).Error; err != nil {
			// Another poll won the insert race; the message is handled.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, fmt.Errorf("failed to store triage: %w", err)
		}

		slog.Info("email triaged",
			"user_id", user.ID,
			"message_id", email.ID,
			"classification", verdict.Classification)
		s.hub.Broadcast(user.ID, "email_triaged", triage)
	}

	return s.History(user.ID)
}

// History returns all triage rows for the user, newest first.
func (s *TriageService) History(userID uuid.UUID) ([]models.EmailTriage, error) {
	var triages []models.EmailTriage
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&triages).Error; err != nil {
		return nil, fmt.Errorf("failed to load triage history: %w", err)
	}
	return triages, nil
}

// Recent returns the most recent triage rows, capped at limit.
func (s *TriageService) Recent(userID uuid.UUID, limit int) ([]models.EmailTriage, error) {
	var triages []models.EmailTriage
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&triages).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent triages: %w", err)
	}
	return triages, nil
}

// SendReply sends a reply on the message's thread. For the custom directive
// the caller's text is sent verbatim; otherwise the assistant drafts the body
// from the stored triage context. The row is marked processed on success.
func (s *TriageService) SendReply(ctx context.Context, user *models.User, req dto.ReplyRequest) error {
	if user.AccessToken == "" {
		return ErrGoogleNotConnected
	}

	triage, err := s.findTriage(user.ID, req.MessageID)
	if err != nil {
		return err
	}

	body := req.CustomMessage
	if req.ReplyType == dto.ReplyCustom {
		if body == "" {
			return errors.New("custom reply requires a message")
		}
	} else {
		body, err = s.assistant.DraftReply(ctx, triage.Sender, triage.Subject, triage.AISummary, req.ReplyType, req.CustomMessage)
		if err != nil {
			return err
		}
	}

	tok := googleToken(user)
	subject := triage.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	if err := s.mail.SendReply(ctx, tok, triage.Sender, subject, body, triage.ThreadID); err != nil {
		return err
	}

	if err := s.db.Model(triage).Update("processed", true).Error; err != nil {
		return fmt.Errorf("failed to mark triage processed: %w", err)
	}
	slog.Info("reply sent", "user_id", user.ID, "message_id", triage.MessageID, "reply_type", req.ReplyType)
	return nil
}

// Archive removes the message from the inbox and marks its triage processed.
func (s *TriageService) Archive(ctx context.Context, user *models.User, messageID string) error {
	if user.AccessToken == "" {
		return ErrGoogleNotConnected
	}

	triage, err := s.findTriage(user.ID, messageID)
	if err != nil {
		return err
	}

	tok := googleToken(user)
	if err := s.mail.Archive(ctx, tok, triage.MessageID); err != nil {
		return err
	}

	if err := s.db.Model(triage).Update("processed", true).Error; err != nil {
		return fmt.Errorf("failed to mark triage processed: %w", err)
	}
	return nil
}

// Count returns the number of triaged emails for the stats endpoint.
func (s *TriageService) Count(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.EmailTriage{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *TriageService) findTriage(userID uuid.UUID, messageID string) (*models.EmailTriage, error) {
	var triage models.EmailTriage
	err := s.db.Where("user_id = ? AND message_id = ?", userID, messageID).First(&triage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTriageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load triage: %w", err)
	}
	return &triage, nil
}
