package services

import (
	"github.com/amayhq/amayai/internal/dto"
	"github.com/google/uuid"
)

// StatsService aggregates the dashboard headline counters.
type StatsService struct {
	triages     *TriageService
	calendar    *CalendarService
	tasks       *TaskService
	suggestions *SuggestionService
}

func NewStatsService(triages *TriageService, calendar *CalendarService, tasks *TaskService, suggestions *SuggestionService) *StatsService {
	return &StatsService{triages: triages, calendar: calendar, tasks: tasks, suggestions: suggestions}
}

func (s *StatsService) Stats(userID uuid.UUID) (*dto.StatsResponse, error) {
	emails, err := s.triages.Count(userID)
	if err != nil {
		return nil, err
	}
	meetings, err := s.calendar.Count(userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.CompletedCount(userID)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.suggestions.Count(userID)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		EmailsTriaged:     emails,
		MeetingsScheduled: meetings,
		TasksCompleted:    tasks,
		AISuggestions:     suggestions,
	}, nil
}
