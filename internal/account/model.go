package account

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	DateOfBirth  *time.Time
	Gender       *string
	PhoneNumber  *string
	Address      *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PatientProfile struct {
	UserID           uuid.UUID
	MedicalHistory   string
	InsuranceDetails *string
	EmergencyContact string
}

type DoctorProfile struct {
	UserID        uuid.UUID
	Specialty     string
	LicenseNumber string
	Clinic        *string
}

// Doctor is the listing view of a doctor: user fields joined with the
// profile.
type Doctor struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Specialty string
	Clinic    *string
}

// DashboardSummary aggregates the counts shown on the admin dashboard.
type DashboardSummary struct {
	TotalAppointments     int64
	WeeklyAppointments    int64
	ScheduledAppointments int64
	CompletedAppointments int64
	CancelledAppointments int64
	TotalPatients         int64
	TotalDoctors          int64
}
