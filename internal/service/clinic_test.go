package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mnas4716/Vapi-medical-assistant/internal/model"
)

type fakeDirectory struct {
	patient     *model.Patient
	findErr     error
	registerErr error
	registered  map[string]string
}

func (f *fakeDirectory) FindPatient(_ context.Context, _ model.PatientQuery) (*model.Patient, error) {
	return f.patient, f.findErr
}

func (f *fakeDirectory) RegisterPatient(_ context.Context, details map[string]string) error {
	f.registered = details
	return f.registerErr
}

type fakeBook struct {
	availability string
	scheduleErr  error
	cancelled    bool
	cancelErr    error

	scheduledFor *model.Patient
	scheduledAt  time.Time
}

func (f *fakeBook) CheckAvailability(_ context.Context, _ string) (string, error) {
	return f.availability, nil
}

func (f *fakeBook) Schedule(_ context.Context, start time.Time, patient *model.Patient) error {
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.scheduledFor = patient
	f.scheduledAt = start
	return nil
}

func (f *fakeBook) Cancel(_ context.Context, _ time.Time, _ *model.Patient) (bool, error) {
	return f.cancelled, f.cancelErr
}

func (f *fakeBook) ParseClinicTime(isoDateTime string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", isoDateTime, time.UTC)
}

type fakeNotifier struct {
	scheduled  int
	cancelled  int
	registered int
}

func (f *fakeNotifier) NotifyScheduled(*model.Patient, time.Time) { f.scheduled++ }
func (f *fakeNotifier) NotifyCancelled(*model.Patient, time.Time) { f.cancelled++ }
func (f *fakeNotifier) NotifyRegistered(string)                   { f.registered++ }

func TestClinic_ScheduleAppointment(t *testing.T) {
	ctx := context.Background()
	patient := &model.Patient{FullName: "Jane Citizen", DOB: "1990-04-01", MobileNumber: "0412345678"}

	t.Run("verified caller books the slot", func(t *testing.T) {
		book := &fakeBook{}
		notifier := &fakeNotifier{}
		clinic := NewClinic(&fakeDirectory{patient: patient}, book, notifier)

		start, err := clinic.ScheduleAppointment(ctx, "2026-09-07T15:30", "0412345678", "1990-04-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if book.scheduledFor != patient {
			t.Fatalf("appointment not booked for verified patient")
		}
		if !start.Equal(book.scheduledAt) {
			t.Fatalf("returned start %v does not match booked %v", start, book.scheduledAt)
		}
		if notifier.scheduled != 1 {
			t.Fatalf("expected one scheduled notification, got %d", notifier.scheduled)
		}
	})

	t.Run("unknown caller is rejected", func(t *testing.T) {
		notifier := &fakeNotifier{}
		clinic := NewClinic(&fakeDirectory{}, &fakeBook{}, notifier)

		_, err := clinic.ScheduleAppointment(ctx, "2026-09-07T15:30", "0499999999", "1990-04-01")
		if !errors.Is(err, ErrPatientNotFound) {
			t.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
		if notifier.scheduled != 0 {
			t.Fatalf("must not notify on rejected booking")
		}
	})

	t.Run("directory failure is wrapped", func(t *testing.T) {
		clinic := NewClinic(&fakeDirectory{findErr: errors.New("sheet unreachable")}, &fakeBook{}, &fakeNotifier{})

		_, err := clinic.ScheduleAppointment(ctx, "2026-09-07T15:30", "0412345678", "1990-04-01")
		if err == nil || errors.Is(err, ErrPatientNotFound) {
			t.Fatalf("expected wrapped lookup error, got %v", err)
		}
	})

	t.Run("bad time never reaches the calendar", func(t *testing.T) {
		book := &fakeBook{}
		clinic := NewClinic(&fakeDirectory{patient: patient}, book, &fakeNotifier{})

		if _, err := clinic.ScheduleAppointment(ctx, "soonish", "0412345678", "1990-04-01"); err == nil {
			t.Fatalf("expected parse error")
		}
		if book.scheduledFor != nil {
			t.Fatalf("calendar must not be touched on parse failure")
		}
	})
}

func TestClinic_CancelAppointment(t *testing.T) {
	ctx := context.Background()
	patient := &model.Patient{FullName: "Jane Citizen", DOB: "1990-04-01", MobileNumber: "0412345678"}

	t.Run("cancelled", func(t *testing.T) {
		notifier := &fakeNotifier{}
		clinic := NewClinic(&fakeDirectory{patient: patient}, &fakeBook{cancelled: true}, notifier)

		cancelled, err := clinic.CancelAppointment(ctx, "2026-09-07T15:30", "0412345678", "1990-04-01")
		if err != nil || !cancelled {
			t.Fatalf("expected cancellation, got %v %v", cancelled, err)
		}
		if notifier.cancelled != 1 {
			t.Fatalf("expected one cancelled notification, got %d", notifier.cancelled)
		}
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		notifier := &fakeNotifier{}
		clinic := NewClinic(&fakeDirectory{patient: patient}, &fakeBook{cancelled: false}, notifier)

		cancelled, err := clinic.CancelAppointment(ctx, "2026-09-07T15:30", "0412345678", "1990-04-01")
		if err != nil || cancelled {
			t.Fatalf("expected no cancellation, got %v %v", cancelled, err)
		}
		if notifier.cancelled != 0 {
			t.Fatalf("must not notify when nothing was cancelled")
		}
	})

	t.Run("unknown caller is rejected", func(t *testing.T) {
		clinic := NewClinic(&fakeDirectory{}, &fakeBook{cancelled: true}, &fakeNotifier{})

		_, err := clinic.CancelAppointment(ctx, "2026-09-07T15:30", "0499999999", "1990-04-01")
		if !errors.Is(err, ErrPatientNotFound) {
			t.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
	})
}

func TestClinic_RegisterPatient(t *testing.T) {
	ctx := context.Background()

	t.Run("success notifies staff", func(t *testing.T) {
		directory := &fakeDirectory{}
		notifier := &fakeNotifier{}
		clinic := NewClinic(directory, &fakeBook{}, notifier)

		err := clinic.RegisterPatient(ctx, map[string]string{"fullName": "John Smith"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if directory.registered["fullName"] != "John Smith" {
			t.Fatalf("details not forwarded: %v", directory.registered)
		}
		if notifier.registered != 1 {
			t.Fatalf("expected one registration notification, got %d", notifier.registered)
		}
	})

	t.Run("failure does not notify", func(t *testing.T) {
		notifier := &fakeNotifier{}
		clinic := NewClinic(&fakeDirectory{registerErr: errors.New("append failed")}, &fakeBook{}, notifier)

		if err := clinic.RegisterPatient(ctx, nil); err == nil {
			t.Fatalf("expected error")
		}
		if notifier.registered != 0 {
			t.Fatalf("must not notify on failed registration")
		}
	})
}
