package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/clinova/clinic-backend/internal/redis"
)

var (
	ErrSlotUnavailable         = errors.New("the selected time slot is not available")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidWeekday          = errors.New("day of week must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidWindow           = errors.New("availability window start must be before end, within one day")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)

// Recorder receives booking outcomes for metrics. Implementations must be
// safe for concurrent use.
type Recorder interface {
	RecordBooking(outcome string)
}

// Booking outcomes reported to the Recorder.
const (
	OutcomeBooked   = "booked"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFault    = "fault"
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	rec    Recorder
}

func NewService(repo Repository, locker redisclient.Locker, rec Recorder) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		rec:    rec,
	}
}

// IsSlotAvailable reports whether a doctor can take an appointment at
// exactly this instant: the instant falls inside the doctor's window for
// that weekday (start inclusive, end exclusive) and no live appointment
// occupies it. A doctor with no window for the day is simply unavailable,
// not an error.
func (s *Service) IsSlotAvailable(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error) {
	av, err := s.repo.FindAvailability(ctx, doctorID, Weekday(at))
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load availability: %w", err)
	}

	tod := TimeOfDay(at)
	if tod < av.StartTime || tod >= av.EndTime {
		return false, nil
	}

	existing, err := s.repo.FindConflicting(ctx, doctorID, at)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("check conflicting appointment: %w", err)
	}

	return existing == nil, nil
}

// Book reserves a slot for a patient. The check-then-insert section runs
// under a per (doctor, instant) lock so that concurrent requests for the
// same slot cannot both pass the availability check; the storage layer's
// partial unique index catches anything that still slips through.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time, notes string) (*Appointment, error) {
	ok, err := s.IsSlotAvailable(ctx, doctorID, at)
	if err != nil {
		s.record(OutcomeFault)
		return nil, err
	}
	if !ok {
		s.record(OutcomeRejected)
		return nil, ErrSlotUnavailable
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, doctorID, at, func(lockCtx context.Context) error {
		// Re-check inside the critical section.
		existing, err := s.repo.FindConflicting(lockCtx, doctorID, at)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check conflicting appointment: %w", err)
		}
		if existing != nil {
			return ErrSlotUnavailable
		}

		appt, err := s.repo.InsertAppointment(lockCtx, Appointment{
			ID:        uuid.New(),
			PatientID: patientID,
			DoctorID:  doctorID,
			StartAt:   at,
			Status:    StatusScheduled,
			Notes:     notes,
		})
		if err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return ErrSlotUnavailable
			}
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, redisclient.ErrLockNotAcquired):
			s.record(OutcomeConflict)
			return nil, ErrSlotBeingBooked
		case errors.Is(err, ErrSlotUnavailable):
			s.record(OutcomeConflict)
			return nil, err
		default:
			s.record(OutcomeFault)
			return nil, err
		}
	}

	s.record(OutcomeBooked)
	return created, nil
}

// AvailableSlots enumerates the free 30-minute slots for a doctor on a
// given date, ascending. The window is cut into slots anchored at its
// start; a trailing partial slot is dropped. Slots already holding a live
// appointment are removed. No window for the weekday means no slots.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error) {
	av, err := s.repo.FindAvailability(ctx, doctorID, Weekday(date))
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	windowStart := dayStart.Add(av.StartTime)
	windowEnd := dayStart.Add(av.EndTime)

	booked, err := s.repo.ListAppointments(ctx, doctorID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	taken := make(map[int64]struct{}, len(booked))
	for _, appt := range booked {
		taken[appt.StartAt.UnixNano()] = struct{}{}
	}

	count := int((av.EndTime - av.StartTime) / SlotDuration)
	slots := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		slot := windowStart.Add(time.Duration(i) * SlotDuration)
		if _, ok := taken[slot.UnixNano()]; ok {
			continue
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// AddAvailability registers a weekly window for a doctor. One window per
// weekday; a second insert for the same day fails with
// ErrAvailabilityExists.
func (s *Service) AddAvailability(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, start, end time.Duration) (*Availability, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return nil, ErrInvalidWeekday
	}
	if start < 0 || end > 24*time.Hour || start >= end {
		return nil, ErrInvalidWindow
	}

	av, err := s.repo.InsertAvailability(ctx, Availability{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		DayOfWeek: dayOfWeek,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		if errors.Is(err, ErrAvailabilityExists) {
			return nil, err
		}
		return nil, fmt.Errorf("insert availability: %w", err)
	}

	return av, nil
}

// ListAvailability returns all weekly windows for a doctor.
func (s *Service) ListAvailability(ctx context.Context, doctorID uuid.UUID) ([]Availability, error) {
	avs, err := s.repo.ListAvailability(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return avs, nil
}

// GetAppointment retrieves one appointment by its public id.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel moves a scheduled appointment to cancelled, freeing its slot for
// future bookings.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusScheduled, StatusCancelled)
}

// Complete moves a scheduled appointment to completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusScheduled, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != from {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a race with another transition.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	return updated, nil
}

// ListByPatient retrieves appointments for a patient, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}

// ListByDoctor retrieves appointments for a doctor, newest first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := s.repo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appts, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) record(outcome string) {
	if s.rec != nil {
		s.rec.RecordBooking(outcome)
	}
}
