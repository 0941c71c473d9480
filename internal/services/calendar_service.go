package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
	"github.com/amayhq/amayai/internal/slack"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	upcomingEventsCap = 20
	maxFreeSlots      = 10

	defaultSlotMinutes = 30
	defaultDaysAhead   = 7
)

// CalendarService lists upcoming events, schedules meetings with a free/busy
// conflict check and finds open business-hours slots.
type CalendarService struct {
	db       *gorm.DB
	calendar CalendarProvider
	notifier slack.Notifier
	hub      Broadcaster

	workdayStart int
	workdayEnd   int
}

func NewCalendarService(db *gorm.DB, calendar CalendarProvider, notifier slack.Notifier, hub Broadcaster, workdayStart, workdayEnd int) *CalendarService {
	return &CalendarService{
		db:           db,
		calendar:     calendar,
		notifier:     notifier,
		hub:          hub,
		workdayStart: workdayStart,
		workdayEnd:   workdayEnd,
	}
}

// ListEvents returns the next upcoming events from the primary calendar.
func (s *CalendarService) ListEvents(ctx context.Context, user *models.User) ([]google.Event, error) {
	if user.AccessToken == "" {
		return nil, ErrGoogleNotConnected
	}
	tok := googleToken(user)
	return s.calendar.ListEvents(ctx, tok, time.Now(), time.Time{}, upcomingEventsCap)
}

// CreateMeeting checks attendee availability, creates the calendar event
// unconditionally and mirrors it locally. Conflicts are recorded, never
// blocking. Attendees are notified over Slack best-effort.
func (s *CalendarService) CreateMeeting(ctx context.Context, user *models.User, req dto.CreateMeetingRequest) (*dto.CreateMeetingResponse, error) {
	if user.AccessToken == "" {
		return nil, ErrGoogleNotConnected
	}
	tok := googleToken(user)

	emails := make([]string, 0, len(req.Attendees))
	for _, a := range req.Attendees {
		emails = append(emails, a.Email)
	}

	hasConflicts := false
	if len(emails) > 0 {
		busy, err := s.calendar.FreeBusy(ctx, tok, emails, req.StartTime, req.EndTime)
		if err != nil {
			// Availability is advisory; scheduling proceeds without it.
			slog.Error("free/busy check failed", "user_id", user.ID, "error", err)
		} else {
			for _, intervals := range busy {
				if len(intervals) > 0 {
					hasConflicts = true
					break
				}
			}
		}
	}

	event, err := s.calendar.CreateEvent(ctx, tok, google.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Start:       req.StartTime,
		End:         req.EndTime,
		Attendees:   emails,
	})
	if err != nil {
		return nil, err
	}

	attendees, err := json.Marshal(emails)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attendees: %w", err)
	}

	meeting := models.Meeting{
		ID:           uuid.New(),
		UserID:       user.ID,
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Attendees:    attendees,
		HasConflicts: hasConflicts,
		Status:       models.MeetingStatusScheduled,
	}
	if err := s.db.Create(&meeting).Error; err != nil {
		return nil, fmt.Errorf("failed to store meeting: %w", err)
	}

	for _, email := range emails {
		if err := s.notifier.SendMeetingNotification(ctx, email, req.Title, req.StartTime, emails); err != nil {
			slog.Error("failed to send meeting notification", "email", email, "error", err)
		}
	}

	s.hub.Broadcast(user.ID, "meeting_scheduled", meeting)
	return &dto.CreateMeetingResponse{
		Meeting:       &meeting,
		CalendarEvent: event,
		HasConflicts:  hasConflicts,
	}, nil
}

// FindFreeTime scans the next daysAhead days for business-hours gaps at least
// durationMinutes long, capped at ten slots.
func (s *CalendarService) FindFreeTime(ctx context.Context, user *models.User, durationMinutes, daysAhead int) ([]dto.FreeSlot, error) {
	if user.AccessToken == "" {
		return nil, ErrGoogleNotConnected
	}
	if durationMinutes <= 0 {
		durationMinutes = defaultSlotMinutes
	}
	if daysAhead <= 0 {
		daysAhead = defaultDaysAhead
	}

	now := time.Now()
	tok := googleToken(user)
	events, err := s.calendar.ListEvents(ctx, tok, now, now.AddDate(0, 0, daysAhead), 250)
	if err != nil {
		return nil, err
	}

	return findFreeSlots(events, now, daysAhead, s.workdayStart, s.workdayEnd,
		time.Duration(durationMinutes)*time.Minute), nil
}

// findFreeSlots sweeps each weekday's business-hours window and emits the
// gaps between events that fit the requested duration. The first day's window
// starts no earlier than now.
func findFreeSlots(events []google.Event, now time.Time, days, startHour, endHour int, duration time.Duration) []dto.FreeSlot {
	sorted := make([]google.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	slots := make([]dto.FreeSlot, 0, maxFreeSlots)
	for d := 0; d < days && len(slots) < maxFreeSlots; d++ {
		day := now.AddDate(0, 0, d)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		windowStart := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, day.Location())
		if d == 0 && now.After(windowStart) {
			windowStart = now
		}
		if !windowStart.Before(windowEnd) {
			continue
		}

		cursor := windowStart
		for _, ev := range sorted {
			if !ev.End.After(windowStart) || !ev.Start.Before(windowEnd) {
				continue
			}
			if ev.Start.Sub(cursor) >= duration {
				slots = append(slots, dto.FreeSlot{Start: cursor, End: ev.Start})
				if len(slots) == maxFreeSlots {
					return slots
				}
			}
			if ev.End.After(cursor) {
				cursor = ev.End
			}
		}
		if cursor.Before(windowEnd) && windowEnd.Sub(cursor) >= duration {
			slots = append(slots, dto.FreeSlot{Start: cursor, End: windowEnd})
		}
	}
	return slots
}

// UpcomingMeetings returns locally mirrored meetings that have not started
// yet, soonest first.
func (s *CalendarService) UpcomingMeetings(userID uuid.UUID, limit int) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := s.db.Where("user_id = ? AND start_time > ?", userID, time.Now()).
		Order("start_time ASC").Limit(limit).Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming meetings: %w", err)
	}
	return meetings, nil
}

// Count returns the number of scheduled meetings for the stats endpoint.
func (s *CalendarService) Count(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Meeting{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
