package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type Notification struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AppointmentID *uuid.UUID
	Message       string
	Status        Status
	SentAt        *time.Time
	CreatedAt     time.Time
}

// UpcomingAppointment is the slice of an appointment the reminder needs.
type UpcomingAppointment struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	DoctorName string
	StartAt    time.Time
}

// ErrAlreadyNotified is returned by Insert when a reminder for this
// (user, appointment) pair already exists.
var ErrAlreadyNotified = errors.New("notification already exists for this appointment")

type Repository interface {
	// Scheduled appointments starting in [from, to) that have no
	// reminder row for their patient yet.
	FindUnnotified(ctx context.Context, from, to time.Time) ([]UpcomingAppointment, error)
	Insert(ctx context.Context, n Notification) error
}

// Reminder periodically creates one reminder notification per upcoming
// appointment. Runs are idempotent: the unique (user, appointment) index
// makes a re-scan of the same window a no-op.
type Reminder struct {
	repo    Repository
	horizon time.Duration
}

func NewReminder(repo Repository, horizon time.Duration) *Reminder {
	return &Reminder{repo: repo, horizon: horizon}
}

// Run performs one reminder sweep and returns how many notifications it
// created.
func (r *Reminder) Run(ctx context.Context, now time.Time) (int, error) {
	upcoming, err := r.repo.FindUnnotified(ctx, now, now.Add(r.horizon))
	if err != nil {
		return 0, fmt.Errorf("find upcoming appointments: %w", err)
	}

	created := 0
	for _, appt := range upcoming {
		apptID := appt.ID
		n := Notification{
			ID:            uuid.New(),
			UserID:        appt.PatientID,
			AppointmentID: &apptID,
			Message: fmt.Sprintf("Reminder: appointment with Dr. %s at %s",
				appt.DoctorName, appt.StartAt.Format("2006-01-02 15:04")),
			Status: StatusPending,
		}

		if err := r.repo.Insert(ctx, n); err != nil {
			if errors.Is(err, ErrAlreadyNotified) {
				continue
			}
			log.Printf("failed to insert reminder for appointment %s: %v", appt.ID, err)
			continue
		}
		created++
	}

	return created, nil
}
