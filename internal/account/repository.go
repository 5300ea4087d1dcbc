package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("a user with this email already exists")
)

// Repository contains all DB interactions needed by the account service.
type Repository interface {
	// CreateUserWithPatientProfile inserts the user row and an empty
	// patient profile in one transaction.
	CreateUserWithPatientProfile(ctx context.Context, u User, p PatientProfile) (*User, error)
	CreateUserWithDoctorProfile(ctx context.Context, u User, d DoctorProfile) (*User, error)

	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	ListDoctors(ctx context.Context) ([]Doctor, error)
	ListUsersByRole(ctx context.Context, role Role, limit, offset int) ([]User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// DashboardSummary computes the admin aggregates; weekFrom/weekTo
	// bound the "this week" appointment count.
	DashboardSummary(ctx context.Context, weekFrom, weekTo time.Time) (*DashboardSummary, error)
}
