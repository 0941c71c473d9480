package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amayhq/amayai/internal/ai"
	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const suggestionContextLimit = 10

// SuggestionService generates proactive suggestions from the user's recent
// activity and tracks their accepted/dismissed state.
type SuggestionService struct {
	db        *gorm.DB
	assistant ai.Assistant
	hub       Broadcaster

	triages  *TriageService
	tasks    *TaskService
	calendar *CalendarService
}

func NewSuggestionService(db *gorm.DB, assistant ai.Assistant, hub Broadcaster, triages *TriageService, tasks *TaskService, calendar *CalendarService) *SuggestionService {
	return &SuggestionService{
		db:        db,
		assistant: assistant,
		hub:       hub,
		triages:   triages,
		tasks:     tasks,
		calendar:  calendar,
	}
}

// List returns the user's suggestions, newest first.
func (s *SuggestionService) List(userID uuid.UUID) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&suggestions).Error; err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}
	return suggestions, nil
}

// Generate bundles recent triages, upcoming meetings and pending tasks into
// the assistant context, persists whatever it proposes verbatim and returns
// the new rows.
func (s *SuggestionService) Generate(ctx context.Context, user *models.User) ([]models.Suggestion, error) {
	uctx, err := s.buildContext(user.ID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.assistant.GenerateSuggestions(ctx, *uctx)
	if err != nil {
		return nil, err
	}

	created := make([]models.Suggestion, 0, len(drafts))
	for _, draft := range drafts {
		actionData, err := json.Marshal(draft.ActionData)
		if err != nil {
			return nil, fmt.Errorf("failed to encode action data: %w", err)
		}

		suggestion := models.Suggestion{
			ID:          uuid.New(),
			UserID:      user.ID,
			Type:        draft.Type,
			Title:       draft.Title,
			Description: draft.Description,
			ActionData:  actionData,
		}
		if err := s.db.Create(&suggestion).Error; err != nil {
			return nil, fmt.Errorf("failed to store suggestion: %w", err)
		}

		s.hub.Broadcast(user.ID, "suggestion_created", suggestion)
		created = append(created, suggestion)
	}
	return created, nil
}

// Update patches the accepted/dismissed flags independently; absent fields
// are left untouched.
func (s *SuggestionService) Update(userID, suggestionID uuid.UUID, req dto.UpdateSuggestionRequest) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	err := s.db.Where("id = ? AND user_id = ?", suggestionID, userID).First(&suggestion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion: %w", err)
	}

	if req.Accepted != nil {
		suggestion.Accepted = *req.Accepted
	}
	if req.Dismissed != nil {
		suggestion.Dismissed = *req.Dismissed
	}

	if err := s.db.Save(&suggestion).Error; err != nil {
		return nil, fmt.Errorf("failed to update suggestion: %w", err)
	}
	return &suggestion, nil
}

// Count returns the number of generated suggestions for the stats endpoint.
func (s *SuggestionService) Count(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Suggestion{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *SuggestionService) buildContext(userID uuid.UUID) (*ai.UserContext, error) {
	triages, err := s.triages.Recent(userID, suggestionContextLimit)
	if err != nil {
		return nil, err
	}
	meetings, err := s.calendar.UpcomingMeetings(userID, suggestionContextLimit)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.Pending(userID, suggestionContextLimit)
	if err != nil {
		return nil, err
	}

	uctx := &ai.UserContext{
		RecentEmails:     make([]ai.ContextEmail, 0, len(triages)),
		UpcomingMeetings: make([]ai.ContextMeeting, 0, len(meetings)),
		PendingTasks:     make([]ai.ContextTask, 0, len(tasks)),
	}
	for _, t := range triages {
		uctx.RecentEmails = append(uctx.RecentEmails, ai.ContextEmail{
			Subject: t.Subject,
			Sender:  t.Sender,
			Date:    t.CreatedAt.Format(time.RFC3339),
		})
	}
	for _, m := range meetings {
		var attendees []string
		if len(m.Attendees) > 0 {
			if err := json.Unmarshal(m.Attendees, &attendees); err != nil {
				return nil, fmt.Errorf("failed to decode attendees: %w", err)
			}
		}
		uctx.UpcomingMeetings = append(uctx.UpcomingMeetings, ai.ContextMeeting{
			Title:     m.Title,
			Date:      m.StartTime.Format(time.RFC3339),
			Attendees: attendees,
		})
	}
	for _, t := range tasks {
		ct := ai.ContextTask{Title: t.Title}
		if t.DueDate != nil {
			ct.DueDate = t.DueDate.Format(time.RFC3339)
		}
		uctx.PendingTasks = append(uctx.PendingTasks, ct)
	}
	return uctx, nil
}
