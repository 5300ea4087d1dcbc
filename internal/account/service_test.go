package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinic-backend/internal/auth"
)

type mockRepo struct {
	createPatientFn  func(ctx context.Context, u User, p PatientProfile) (*User, error)
	getByEmailFn     func(ctx context.Context, email string) (*User, error)
	dashboardFn      func(ctx context.Context, weekFrom, weekTo time.Time) (*DashboardSummary, error)
	listDoctorsFn    func(ctx context.Context) ([]Doctor, error)
	listUsersFn      func(ctx context.Context, role Role, limit, offset int) ([]User, error)
}

func (m *mockRepo) CreateUserWithPatientProfile(ctx context.Context, u User, p PatientProfile) (*User, error) {
	return m.createPatientFn(ctx, u, p)
}
func (m *mockRepo) CreateUserWithDoctorProfile(ctx context.Context, u User, d DoctorProfile) (*User, error) {
	return &u, nil
}
func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return m.getByEmailFn(ctx, email)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return nil, ErrUserNotFound
}
func (m *mockRepo) ListDoctors(ctx context.Context) ([]Doctor, error) {
	if m.listDoctorsFn != nil {
		return m.listDoctorsFn(ctx)
	}
	return nil, nil
}
func (m *mockRepo) ListUsersByRole(ctx context.Context, role Role, limit, offset int) ([]User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, role, limit, offset)
	}
	return nil, nil
}
func (m *mockRepo) DeleteUser(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockRepo) DashboardSummary(ctx context.Context, weekFrom, weekTo time.Time) (*DashboardSummary, error) {
	return m.dashboardFn(ctx, weekFrom, weekTo)
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", "clinic-backend", time.Hour)
}

func TestRegister_CreatesPatient(t *testing.T) {
	var captured User
	repo := &mockRepo{
		createPatientFn: func(ctx context.Context, u User, p PatientProfile) (*User, error) {
			captured = u
			return &u, nil
		},
	}
	svc := NewService(repo, testJWT())

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Pat Doe",
		Email:    "pat@example.com",
		Password: "s3cret-pw",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Role != RolePatient {
		t.Errorf("Role = %s, want patient", user.Role)
	}
	if captured.ID == uuid.Nil {
		t.Error("expected a generated user id")
	}
	if captured.PasswordHash == "s3cret-pw" || captured.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if !auth.CheckPassword(captured.PasswordHash, "s3cret-pw") {
		t.Error("stored hash does not verify against the password")
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &mockRepo{
		createPatientFn: func(ctx context.Context, u User, p PatientProfile) (*User, error) {
			return nil, ErrEmailTaken
		},
	}
	svc := NewService(repo, testJWT())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Pat Doe",
		Email:    "pat@example.com",
		Password: "s3cret-pw",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("error = %v, want ErrEmailTaken", err)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatal(err)
	}
	userID := uuid.New()
	repo := &mockRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: userID, Email: email, Role: RoleDoctor, PasswordHash: hash}, nil
		},
	}
	svc := NewService(repo, testJWT())

	token, expiresAt, err := svc.Login(context.Background(), "doc@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("expected expiry in the future")
	}

	claims, err := testJWT().Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("token UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != string(RoleDoctor) {
		t.Errorf("token Role = %q, want doctor", claims.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := auth.HashPassword("s3cret-pw")
	repo := &mockRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: uuid.New(), Email: email, Role: RolePatient, PasswordHash: hash}, nil
		},
	}
	svc := NewService(repo, testJWT())

	if _, _, err := svc.Login(context.Background(), "pat@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &mockRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return nil, ErrUserNotFound
		},
	}
	svc := NewService(repo, testJWT())

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestDashboard_WeekBounds(t *testing.T) {
	var gotFrom, gotTo time.Time
	repo := &mockRepo{
		dashboardFn: func(ctx context.Context, weekFrom, weekTo time.Time) (*DashboardSummary, error) {
			gotFrom, gotTo = weekFrom, weekTo
			return &DashboardSummary{TotalAppointments: 3}, nil
		},
	}
	svc := NewService(repo, testJWT())

	// 2026-09-09 is a Wednesday; the week bucket starts Sunday 09-06.
	now := time.Date(2026, 9, 9, 15, 30, 0, 0, time.UTC)
	summary, err := svc.Dashboard(context.Background(), now)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if summary.TotalAppointments != 3 {
		t.Errorf("TotalAppointments = %d, want 3", summary.TotalAppointments)
	}

	wantFrom := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(wantFrom) {
		t.Errorf("weekFrom = %s, want %s", gotFrom, wantFrom)
	}
	if !gotTo.Equal(wantFrom.AddDate(0, 0, 7)) {
		t.Errorf("weekTo = %s, want %s", gotTo, wantFrom.AddDate(0, 0, 7))
	}
}
