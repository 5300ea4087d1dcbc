package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinic-backend/internal/account"
	"github.com/clinova/clinic-backend/internal/scheduling"
)

type RegisterRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DateOfBirth *string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Gender      *string `json:"gender,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
}

type RegisterResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Message string    `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type BookAppointmentRequest struct {
	DoctorID  string  `json:"doctor_id"`
	StartAt   string  `json:"start_at"` // RFC 3339
	Notes     string  `json:"notes,omitempty"`
	PatientID *string `json:"patient_id,omitempty"` // admin booking on behalf of a patient
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartAt   time.Time `json:"start_at"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		StartAt:   a.StartAt,
		Status:    string(a.Status),
		Notes:     a.Notes,
	}
}

type AvailabilityRequest struct {
	DayOfWeek int    `json:"day_of_week"` // 1 = Monday .. 7 = Sunday
	StartTime string `json:"start_time"`  // HH:MM
	EndTime   string `json:"end_time"`    // HH:MM
}

type AvailabilityResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

func toAvailabilityResponse(av *scheduling.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		ID:        av.ID,
		DoctorID:  av.DoctorID,
		DayOfWeek: av.DayOfWeek,
		StartTime: formatClock(av.StartTime),
		EndTime:   formatClock(av.EndTime),
	}
}

type SlotsResponse struct {
	DoctorID uuid.UUID   `json:"doctor_id"`
	Date     string      `json:"date"`
	Slots    []time.Time `json:"slots"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty"`
	Clinic    *string   `json:"clinic,omitempty"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *account.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type DashboardResponse struct {
	TotalAppointments     int64 `json:"total_appointments"`
	WeeklyAppointments    int64 `json:"weekly_appointments"`
	ScheduledAppointments int64 `json:"scheduled_appointments"`
	CompletedAppointments int64 `json:"completed_appointments"`
	CancelledAppointments int64 `json:"cancelled_appointments"`
	TotalPatients         int64 `json:"total_patients"`
	TotalDoctors          int64 `json:"total_doctors"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
