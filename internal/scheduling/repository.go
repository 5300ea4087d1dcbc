package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")

	// ErrSlotTaken is returned by InsertAppointment when the storage
	// layer's uniqueness backstop rejects a second live appointment for
	// the same doctor and instant.
	ErrSlotTaken = errors.New("slot already has a live appointment")

	// ErrAvailabilityExists is returned by InsertAvailability when the
	// doctor already has a window on that weekday.
	ErrAvailabilityExists = errors.New("doctor already has availability for this day")
)

// Repository contains all DB interactions needed by the scheduling service.
type Repository interface {
	FindAvailability(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*Availability, error)
	ListAvailability(ctx context.Context, doctorID uuid.UUID) ([]Availability, error)
	InsertAvailability(ctx context.Context, av Availability) (*Availability, error)

	// Conflict check: a non-cancelled appointment at exactly this instant.
	FindConflicting(ctx context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error)

	// Non-cancelled appointments for a doctor in [from, to), for slot
	// enumeration.
	ListAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	InsertAppointment(ctx context.Context, appt Appointment) (*Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
}
