package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amayhq/amayai/internal/dto"
	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// Monday 08:00 UTC.
var monday = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func slotAt(day time.Time, startHour, endHour int) dto.FreeSlot {
	return dto.FreeSlot{
		Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location()),
		End:   time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, day.Location()),
	}
}

func TestFindFreeSlotsEmptyCalendarSkipsWeekends(t *testing.T) {
	slots := findFreeSlots(nil, monday, 7, 9, 18, 30*time.Minute)

	// Mon-Fri full windows; Saturday and Sunday produce nothing.
	require.Len(t, slots, 5)
	for i, slot := range slots {
		assert.Equal(t, slotAt(monday.AddDate(0, 0, i), 9, 18), slot)
	}
}

func TestFindFreeSlotsClipsFirstDayToNow(t *testing.T) {
	now := monday.Add(6*time.Hour + 30*time.Minute) // 14:30
	slots := findFreeSlots(nil, now, 1, 9, 18, 30*time.Minute)

	require.Len(t, slots, 1)
	assert.Equal(t, now, slots[0].Start)
	assert.Equal(t, slotAt(monday, 9, 18).End, slots[0].End)
}

func TestFindFreeSlotsSplitsAroundEvents(t *testing.T) {
	events := []google.Event{
		{Start: slotAt(monday, 10, 11).Start, End: slotAt(monday, 10, 11).End},
		{Start: slotAt(monday, 12, 13).Start, End: slotAt(monday, 12, 13).End},
	}
	slots := findFreeSlots(events, monday, 1, 9, 18, time.Hour)

	require.Len(t, slots, 3)
	assert.Equal(t, slotAt(monday, 9, 10), slots[0])
	assert.Equal(t, slotAt(monday, 11, 12), slots[1])
	assert.Equal(t, slotAt(monday, 13, 18), slots[2])
}

func TestFindFreeSlotsDropsGapsShorterThanDuration(t *testing.T) {
	events := []google.Event{
		{Start: slotAt(monday, 9, 17).Start, End: slotAt(monday, 9, 17).End.Add(30 * time.Minute)},
	}
	slots := findFreeSlots(events, monday, 1, 9, 18, time.Hour)
	assert.Empty(t, slots)
}

func TestFindFreeSlotsCappedAtTen(t *testing.T) {
	slots := findFreeSlots(nil, monday, 21, 9, 18, 30*time.Minute)
	assert.Len(t, slots, 10)
}

func TestFindFreeSlotsIgnoresEventsOutsideWindow(t *testing.T) {
	events := []google.Event{
		{Start: slotAt(monday, 6, 7).Start, End: slotAt(monday, 6, 7).End},
		{Start: slotAt(monday, 19, 20).Start, End: slotAt(monday, 19, 20).End},
	}
	slots := findFreeSlots(events, monday, 1, 9, 18, 30*time.Minute)

	require.Len(t, slots, 1)
	assert.Equal(t, slotAt(monday, 9, 18), slots[0])
}

func newCalendarFixture(t *testing.T, cal *fakeCalendar) (*CalendarService, *fakeHub, *fakeNotifier, *models.User) {
	t.Helper()
	db := newTestDB(t)
	hub := &fakeHub{}
	notifier := &fakeNotifier{}
	svc := NewCalendarService(db, cal, notifier, hub, 9, 18)
	user := newTestUser(t, db, "amay@example.com")
	return svc, hub, notifier, user
}

func meetingRequest() dto.CreateMeetingRequest {
	return dto.CreateMeetingRequest{
		Title:     "Planning sync",
		StartTime: slotAt(monday, 10, 11).Start,
		EndTime:   slotAt(monday, 10, 11).End,
		Attendees: []dto.Attendee{{Email: "alice@example.com"}, {Email: "bob@example.com"}},
	}
}

func TestCreateMeetingRecordsConflictsWithoutBlocking(t *testing.T) {
	cal := &fakeCalendar{
		freeBusy: func(_ context.Context, _ *oauth2.Token, _ []string, _, _ time.Time) (map[string][]google.BusyInterval, error) {
			return map[string][]google.BusyInterval{
				"alice@example.com": {{Start: slotAt(monday, 10, 11).Start, End: slotAt(monday, 10, 11).End}},
				"bob@example.com":   {},
			}, nil
		},
	}
	svc, hub, notifier, user := newCalendarFixture(t, cal)

	resp, err := svc.CreateMeeting(context.Background(), user, meetingRequest())
	require.NoError(t, err)

	assert.True(t, resp.HasConflicts)
	assert.True(t, resp.Meeting.HasConflicts)
	assert.NotNil(t, resp.CalendarEvent)
	assert.Equal(t, models.MeetingStatusScheduled, resp.Meeting.Status)
	assert.Equal(t, []string{"meeting_scheduled"}, hub.typesFor(user.ID))
	assert.Len(t, notifier.meetings, 2)

	var stored models.Meeting
	require.NoError(t, svc.db.First(&stored, "user_id = ?", user.ID).Error)
	assert.True(t, stored.HasConflicts)
}

func TestCreateMeetingNoConflicts(t *testing.T) {
	svc, _, _, user := newCalendarFixture(t, &fakeCalendar{})

	resp, err := svc.CreateMeeting(context.Background(), user, meetingRequest())
	require.NoError(t, err)
	assert.False(t, resp.HasConflicts)
}

func TestCreateMeetingSurvivesFreeBusyFailure(t *testing.T) {
	cal := &fakeCalendar{
		freeBusy: func(_ context.Context, _ *oauth2.Token, _ []string, _, _ time.Time) (map[string][]google.BusyInterval, error) {
			return nil, errors.New("freebusy down")
		},
	}
	svc, _, _, user := newCalendarFixture(t, cal)

	resp, err := svc.CreateMeeting(context.Background(), user, meetingRequest())
	require.NoError(t, err)
	assert.False(t, resp.HasConflicts)
}

func TestCreateMeetingSurvivesNotifierFailure(t *testing.T) {
	svc, hub, notifier, user := newCalendarFixture(t, &fakeCalendar{})
	notifier.err = errors.New("slack down")

	resp, err := svc.CreateMeeting(context.Background(), user, meetingRequest())
	require.NoError(t, err)
	assert.NotNil(t, resp.Meeting)
	assert.Equal(t, []string{"meeting_scheduled"}, hub.typesFor(user.ID))
}

func TestCreateMeetingFailsWhenEventCreationFails(t *testing.T) {
	cal := &fakeCalendar{
		createEvent: func(_ context.Context, _ *oauth2.Token, _ google.EventInput) (*google.Event, error) {
			return nil, errors.New("calendar down")
		},
	}
	svc, _, _, user := newCalendarFixture(t, cal)

	_, err := svc.CreateMeeting(context.Background(), user, meetingRequest())
	require.Error(t, err)

	var count int64
	require.NoError(t, svc.db.Model(&models.Meeting{}).Count(&count).Error)
	assert.Zero(t, count)
}
