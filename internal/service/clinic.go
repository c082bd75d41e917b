package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mnas4716/Vapi-medical-assistant/internal/model"
)

// ErrPatientNotFound is returned when identity verification fails.
var ErrPatientNotFound = errors.New("patient not found")

// PatientDirectory is the patient record store (Google Sheets in production).
type PatientDirectory interface {
	FindPatient(ctx context.Context, query model.PatientQuery) (*model.Patient, error)
	RegisterPatient(ctx context.Context, details map[string]string) error
}

// AppointmentBook is the appointment store (Google Calendar in production).
type AppointmentBook interface {
	CheckAvailability(ctx context.Context, isoDateTime string) (string, error)
	Schedule(ctx context.Context, start time.Time, patient *model.Patient) error
	Cancel(ctx context.Context, start time.Time, patient *model.Patient) (bool, error)
	ParseClinicTime(isoDateTime string) (time.Time, error)
}

// BookingNotifier receives booking activity. Implementations must tolerate
// being called with a nil underlying value.
type BookingNotifier interface {
	NotifyScheduled(patient *model.Patient, start time.Time)
	NotifyCancelled(patient *model.Patient, start time.Time)
	NotifyRegistered(fullName string)
}

// Clinic orchestrates the front-desk operations: every booking mutation
// verifies the caller against the patient directory first.
type Clinic struct {
	directory PatientDirectory
	book      AppointmentBook
	notifier  BookingNotifier
}

// NewClinic wires the directory, appointment book and notifier together.
func NewClinic(directory PatientDirectory, book AppointmentBook, notifier BookingNotifier) *Clinic {
	return &Clinic{
		directory: directory,
		book:      book,
		notifier:  notifier,
	}
}

// FindPatient verifies a caller's identity. Returns nil when no record matches.
func (c *Clinic) FindPatient(ctx context.Context, query model.PatientQuery) (*model.Patient, error) {
	return c.directory.FindPatient(ctx, query)
}

// RegisterPatient appends a new patient record.
func (c *Clinic) RegisterPatient(ctx context.Context, details map[string]string) error {
	if err := c.directory.RegisterPatient(ctx, details); err != nil {
		return err
	}
	c.notifier.NotifyRegistered(details["fullName"])
	return nil
}

// CheckAvailability reports whether the requested slot is bookable.
func (c *Clinic) CheckAvailability(ctx context.Context, isoDateTime string) (string, error) {
	return c.book.CheckAvailability(ctx, isoDateTime)
}

// ScheduleAppointment verifies the caller, then books the slot. Returns the
// confirmed start time in the clinic timezone.
func (c *Clinic) ScheduleAppointment(ctx context.Context, isoDateTime, mobileNumber, dob string) (time.Time, error) {
	patient, err := c.verify(ctx, mobileNumber, dob)
	if err != nil {
		return time.Time{}, err
	}

	start, err := c.book.ParseClinicTime(isoDateTime)
	if err != nil {
		return time.Time{}, err
	}

	if err := c.book.Schedule(ctx, start, patient); err != nil {
		return time.Time{}, err
	}

	c.notifier.NotifyScheduled(patient, start)
	return start, nil
}

// CancelAppointment verifies the caller, then cancels the appointment at the
// given time. Returns false when no matching appointment exists.
func (c *Clinic) CancelAppointment(ctx context.Context, isoDateTime, mobileNumber, dob string) (bool, error) {
	patient, err := c.verify(ctx, mobileNumber, dob)
	if err != nil {
		return false, err
	}

	start, err := c.book.ParseClinicTime(isoDateTime)
	if err != nil {
		return false, err
	}

	cancelled, err := c.book.Cancel(ctx, start, patient)
	if err != nil {
		return false, err
	}
	if cancelled {
		c.notifier.NotifyCancelled(patient, start)
	}
	return cancelled, nil
}

func (c *Clinic) verify(ctx context.Context, mobileNumber, dob string) (*model.Patient, error) {
	patient, err := c.directory.FindPatient(ctx, model.PatientQuery{
		MobileNumber: mobileNumber,
		DOB:          dob,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify patient: %w", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}
