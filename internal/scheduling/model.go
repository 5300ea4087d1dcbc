package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// SlotDuration is the unit of bookability. Availability windows are cut
// into slots of this length, anchored at the window start.
const SlotDuration = 30 * time.Minute

// Availability is one recurring weekly window during which a doctor
// accepts appointments. StartTime and EndTime are offsets from midnight.
type Availability struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	DayOfWeek int // 1 = Monday .. 7 = Sunday
	StartTime time.Duration
	EndTime   time.Duration
	CreatedAt time.Time
}

type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	StartAt   time.Time
	Status    AppointmentStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
