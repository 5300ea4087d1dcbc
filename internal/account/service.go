package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinic-backend/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo Repository
	jwt  *auth.JWTManager
}

func NewService(repo Repository, jwt *auth.JWTManager) *Service {
	return &Service{repo: repo, jwt: jwt}
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth *time.Time
	Gender      *string
	PhoneNumber *string
	Address     *string
}

// Register creates a patient account with an empty patient profile. New
// signups are always patients; doctors and admins are provisioned by an
// admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         RolePatient,
		PasswordHash: hash,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
	}

	created, err := s.repo.CreateUserWithPatientProfile(ctx, user, PatientProfile{})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, err error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a hash comparison so a missing account costs the
			// same as a wrong password.
			_, _ = auth.HashPassword(password)
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.jwt.Generate(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repo.ListUsersByRole(ctx, RolePatient, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return users, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUser(ctx, id)
}

// Dashboard computes the admin summary. The week bucket runs from the
// most recent Sunday midnight, matching how the dashboard has always
// counted.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekFrom := day.AddDate(0, 0, -int(now.Weekday()))
	weekTo := weekFrom.AddDate(0, 0, 7)

	summary, err := s.repo.DashboardSummary(ctx, weekFrom, weekTo)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return summary, nil
}
