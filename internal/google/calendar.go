package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is a calendar event reduced to the fields the dashboard renders.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"all_day"`
	Attendees []string  `json:"attendees,omitempty"`
	HTMLLink  string    `json:"html_link,omitempty"`
}

// EventInput describes a calendar event to create.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// BusyInterval is one busy block from a free/busy query.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

func (c *Client) calendarService(ctx context.Context, tok *oauth2.Token) (*calendar.Service, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.httpClient(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// ListEvents returns events from the primary calendar, expanded and ordered
// by start time.
func (c *Client) ListEvents(ctx context.Context, tok *oauth2.Token, from, to time.Time, max int64) ([]Event, error) {
	svc, err := c.calendarService(ctx, tok)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List("primary").
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(max).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !to.IsZero() {
		call = call.TimeMax(to.Format(time.RFC3339))
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		ev, err := fromCalendarEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// CreateEvent inserts an event into the primary calendar.
func (c *Client) CreateEvent(ctx context.Context, tok *oauth2.Token, in EventInput) (*Event, error) {
	svc, err := c.calendarService(ctx, tok)
	if err != nil {
		return nil, err
	}

	attendees := make([]*calendar.EventAttendee, 0, len(in.Attendees))
	for _, email := range in.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert("primary", &calendar.Event{
		Summary:     in.Title,
		Description: in.Description,
		Start:       &calendar.EventDateTime{DateTime: in.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: in.End.Format(time.RFC3339)},
		Attendees:   attendees,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	ev, err := fromCalendarEvent(created)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// FreeBusy returns the busy intervals per attendee calendar over the range.
func (c *Client) FreeBusy(ctx context.Context, tok *oauth2.Token, emails []string, from, to time.Time) (map[string][]BusyInterval, error) {
	svc, err := c.calendarService(ctx, tok)
	if err != nil {
		return nil, err
	}

	items := make([]*calendar.FreeBusyRequestItem, 0, len(emails))
	for _, email := range emails {
		items = append(items, &calendar.FreeBusyRequestItem{Id: email})
	}

	res, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("free/busy query failed: %w", err)
	}

	busy := make(map[string][]BusyInterval, len(res.Calendars))
	for id, cal := range res.Calendars {
		intervals := make([]BusyInterval, 0, len(cal.Busy))
		for _, b := range cal.Busy {
			start, err := time.Parse(time.RFC3339, b.Start)
			if err != nil {
				return nil, fmt.Errorf("invalid busy start %q: %w", b.Start, err)
			}
			end, err := time.Parse(time.RFC3339, b.End)
			if err != nil {
				return nil, fmt.Errorf("invalid busy end %q: %w", b.End, err)
			}
			intervals = append(intervals, BusyInterval{Start: start, End: end})
		}
		busy[id] = intervals
	}
	return busy, nil
}

func fromCalendarEvent(item *calendar.Event) (Event, error) {
	ev := Event{ID: item.Id, Title: item.Summary, HTMLLink: item.HtmlLink}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}

	var err error
	ev.Start, ev.AllDay, err = parseEventTime(item.Start)
	if err != nil {
		return ev, err
	}
	ev.End, _, err = parseEventTime(item.End)
	return ev, err
}

func parseEventTime(edt *calendar.EventDateTime) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, nil
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid event time %q: %w", edt.DateTime, err)
		}
		return t, false, nil
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, time.Local)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid event date %q: %w", edt.Date, err)
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}
