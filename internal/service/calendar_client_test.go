package service

import (
	"testing"
	"time"
)

func testCalendarClient() *CalendarClient {
	return &CalendarClient{
		calendarID:   "primary",
		location:     time.UTC,
		openHour:     9,
		closeHour:    17,
		slotDuration: 30 * time.Minute,
	}
}

func slot(t *testing.T, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02T15:04", "2026-09-07T"+hhmm, time.UTC)
	if err != nil {
		t.Fatalf("bad test time %q: %v", hhmm, err)
	}
	return parsed
}

func TestAvailabilityFor(t *testing.T) {
	dayEnd := slot(t, "17:00")
	dur := 30 * time.Minute

	t.Run("free slot", func(t *testing.T) {
		got := availabilityFor(slot(t, "10:00"), dayEnd, dur, nil)
		if got != "AVAILABLE" {
			t.Fatalf("expected AVAILABLE, got %q", got)
		}
	})

	t.Run("busy slot suggests later times", func(t *testing.T) {
		busy := []busyInterval{{start: slot(t, "10:00"), end: slot(t, "10:30")}}
		got := availabilityFor(slot(t, "10:00"), dayEnd, dur, busy)
		if got != "Suggestions: 10:30 AM, 11:00 AM, 11:30 AM" {
			t.Fatalf("unexpected suggestions: %q", got)
		}
	})

	t.Run("suggestions skip busy slots", func(t *testing.T) {
		busy := []busyInterval{
			{start: slot(t, "10:00"), end: slot(t, "11:00")},
			{start: slot(t, "11:30"), end: slot(t, "12:00")},
		}
		got := availabilityFor(slot(t, "10:00"), dayEnd, dur, busy)
		if got != "Suggestions: 11:00 AM, 12:00 PM, 12:30 PM" {
			t.Fatalf("unexpected suggestions: %q", got)
		}
	})

	t.Run("partial overlap counts as busy", func(t *testing.T) {
		busy := []busyInterval{{start: slot(t, "10:15"), end: slot(t, "10:45")}}
		got := availabilityFor(slot(t, "10:00"), dayEnd, dur, busy)
		if got == "AVAILABLE" {
			t.Fatalf("overlapping slot must not be available")
		}
	})

	t.Run("no free slots before close", func(t *testing.T) {
		busy := []busyInterval{{start: slot(t, "16:00"), end: slot(t, "17:00")}}
		got := availabilityFor(slot(t, "16:00"), dayEnd, dur, busy)
		if got != "I'm sorry, no free slots found later today." {
			t.Fatalf("unexpected result: %q", got)
		}
	})

	t.Run("suggestions never cross close hour", func(t *testing.T) {
		busy := []busyInterval{{start: slot(t, "16:00"), end: slot(t, "16:30")}}
		got := availabilityFor(slot(t, "16:00"), dayEnd, dur, busy)
		if got != "Suggestions: 4:30 PM" {
			t.Fatalf("unexpected suggestions: %q", got)
		}
	})
}

func TestParseClinicTime(t *testing.T) {
	cc := testCalendarClient()

	t.Run("rfc3339", func(t *testing.T) {
		got, err := cc.parseClinicTime("2026-09-07T10:00:00Z")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(slot(t, "10:00")) {
			t.Fatalf("unexpected time: %v", got)
		}
	})

	t.Run("zone-less is clinic-local", func(t *testing.T) {
		got, err := cc.parseClinicTime("2026-09-07T10:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(slot(t, "10:00")) {
			t.Fatalf("unexpected time: %v", got)
		}
	})

	t.Run("zone-less with seconds", func(t *testing.T) {
		if _, err := cc.parseClinicTime("2026-09-07T10:00:00"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := cc.parseClinicTime(""); err == nil {
			t.Fatalf("expected error for empty input")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := cc.parseClinicTime("next tuesday"); err == nil {
			t.Fatalf("expected error for unparseable input")
		}
	})
}

func TestFormatHour(t *testing.T) {
	if got := formatHour(9); got != "9 AM" {
		t.Fatalf("expected 9 AM, got %q", got)
	}
	if got := formatHour(17); got != "5 PM" {
		t.Fatalf("expected 5 PM, got %q", got)
	}
}
