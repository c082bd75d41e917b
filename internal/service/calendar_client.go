package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/mnas4716/Vapi-medical-assistant/internal/config"
	"github.com/mnas4716/Vapi-medical-assistant/internal/model"
)

const maxSlotSuggestions = 3

// CalendarClient books clinic appointments on a Google Calendar.
type CalendarClient struct {
	service      *calendar.Service
	calendarID   string
	location     *time.Location
	openHour     int
	closeHour    int
	slotDuration time.Duration
}

// NewCalendarClient creates the appointment calendar client.
func NewCalendarClient(ctx context.Context) (*CalendarClient, error) {
	creds, err := GetGoogleCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials for Calendar: %w", err)
	}

	service, err := calendar.NewService(ctx, creds.ClientOption())
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &CalendarClient{
		service:      service,
		calendarID:   config.CalendarID,
		location:     config.ClinicLocation(),
		openHour:     config.ClinicOpenHour,
		closeHour:    config.ClinicCloseHour,
		slotDuration: time.Duration(config.AppointmentDurationMinutes) * time.Minute,
	}, nil
}

// busyInterval is one occupied span on the clinic calendar.
type busyInterval struct {
	start time.Time
	end   time.Time
}

// CheckAvailability reports whether the requested slot is free. A busy slot
// yields up to three later same-day suggestions; a slot outside clinic hours
// yields the hours message.
func (cc *CalendarClient) CheckAvailability(ctx context.Context, isoDateTime string) (string, error) {
	requested, err := cc.parseClinicTime(isoDateTime)
	if err != nil {
		return "", fmt.Errorf("failed to parse requested time: %w", err)
	}

	if requested.Hour() < cc.openHour || requested.Hour() >= cc.closeHour {
		return fmt.Sprintf("Sorry, that time is outside our clinic hours (%s – %s).",
			formatHour(cc.openHour), formatHour(cc.closeHour)), nil
	}

	dayEnd := time.Date(requested.Year(), requested.Month(), requested.Day(),
		cc.closeHour, 0, 0, 0, cc.location)

	busy, err := cc.busyIntervals(ctx, requested, dayEnd)
	if err != nil {
		return "", err
	}

	result := availabilityFor(requested, dayEnd, cc.slotDuration, busy)
	if result == "AVAILABLE" {
		log.Printf("Slot at %s is available", requested.Format(time.RFC3339))
	}
	return result, nil
}

// Schedule inserts a 30-minute appointment event for the patient.
func (cc *CalendarClient) Schedule(ctx context.Context, start time.Time, patient *model.Patient) error {
	end := start.Add(cc.slotDuration)

	event := &calendar.Event{
		Summary:     "Appointment: " + patient.FullName,
		Description: "Booked via voice agent",
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: cc.location.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: cc.location.String(),
		},
	}

	if _, err := cc.service.Events.Insert(cc.calendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert appointment event: %w", err)
	}

	log.Printf("Scheduled: %s at %s", patient.FullName, start.Format(time.RFC3339))
	return nil
}

// Cancel deletes the appointment at the given time whose summary carries the
// patient's name. Reports false when nothing matched.
func (cc *CalendarClient) Cancel(ctx context.Context, start time.Time, patient *model.Patient) (bool, error) {
	events, err := cc.service.Events.List(cc.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(start.Add(time.Minute).Format(time.RFC3339)).
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to list events for cancellation: %w", err)
	}

	target := strings.ToLower(patient.FullName)
	for _, event := range events.Items {
		if !strings.Contains(strings.ToLower(event.Summary), target) {
			continue
		}
		if err := cc.service.Events.Delete(cc.calendarID, event.Id).Context(ctx).Do(); err != nil {
			return false, fmt.Errorf("failed to delete event: %w", err)
		}
		log.Printf("Cancelled appointment for %s", patient.FullName)
		return true, nil
	}

	log.Printf("No matching appointment found for %s", patient.FullName)
	return false, nil
}

// ParseClinicTime parses the voice agent's date-time string in the clinic
// timezone, for callers that need the concrete time (scheduling, cancelling).
func (cc *CalendarClient) ParseClinicTime(isoDateTime string) (time.Time, error) {
	return cc.parseClinicTime(isoDateTime)
}

// busyIntervals lists occupied spans between from and to. All-day events
// count as busy for the whole day.
func (cc *CalendarClient) busyIntervals(ctx context.Context, from, to time.Time) ([]busyInterval, error) {
	events, err := cc.service.Events.List(cc.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	var busy []busyInterval
	for _, event := range events.Items {
		interval, ok := cc.eventInterval(event)
		if !ok {
			continue
		}
		busy = append(busy, interval)
	}
	return busy, nil
}

func (cc *CalendarClient) eventInterval(event *calendar.Event) (busyInterval, bool) {
	if event.Start == nil || event.End == nil {
		return busyInterval{}, false
	}

	if event.Start.DateTime != "" {
		start, err1 := time.Parse(time.RFC3339, event.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, event.End.DateTime)
		if err1 != nil || err2 != nil {
			return busyInterval{}, false
		}
		return busyInterval{start: start.In(cc.location), end: end.In(cc.location)}, true
	}

	// All-day event.
	start, err1 := time.ParseInLocation("2006-01-02", event.Start.Date, cc.location)
	end, err2 := time.ParseInLocation("2006-01-02", event.End.Date, cc.location)
	if err1 != nil || err2 != nil {
		return busyInterval{}, false
	}
	return busyInterval{start: start, end: end}, true
}

// parseClinicTime accepts RFC 3339 as well as zone-less forms like
// "2006-01-02T15:04", which the voice agent commonly produces. Zone-less
// times are taken to be clinic-local.
func (cc *CalendarClient) parseClinicTime(isoDateTime string) (time.Time, error) {
	s := strings.TrimSpace(isoDateTime)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date-time")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(cc.location), nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, cc.location); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date-time format: %q", s)
}

// availabilityFor is the pure slot decision: "AVAILABLE" for a free slot,
// otherwise up to three later same-day suggestions that fit before dayEnd.
func availabilityFor(requested, dayEnd time.Time, slot time.Duration, busy []busyInterval) string {
	if !overlapsAny(requested, requested.Add(slot), busy) {
		return "AVAILABLE"
	}

	var suggestions []string
	for search := requested.Add(slot); len(suggestions) < maxSlotSuggestions; search = search.Add(slot) {
		if search.Add(slot).After(dayEnd) {
			break
		}
		if !overlapsAny(search, search.Add(slot), busy) {
			suggestions = append(suggestions, search.Format("3:04 PM"))
		}
	}

	if len(suggestions) == 0 {
		return "I'm sorry, no free slots found later today."
	}
	return "Suggestions: " + strings.Join(suggestions, ", ")
}

func overlapsAny(start, end time.Time, busy []busyInterval) bool {
	for _, b := range busy {
		if b.start.Before(end) && b.end.After(start) {
			return true
		}
	}
	return false
}

// formatHour renders a 24h clinic hour as "9 AM" / "5 PM".
func formatHour(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3 PM")
}
