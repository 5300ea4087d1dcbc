package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, name, email, role, password_hash, date_of_birth, gender, phone_number, address, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.PasswordHash,
		&u.DateOfBirth,
		&u.Gender,
		&u.PhoneNumber,
		&u.Address,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *PgRepository) insertUser(ctx context.Context, tx pgx.Tx, u User) (*User, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, date_of_birth, gender, phone_number, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+userColumns+`
	`, u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.DateOfBirth, u.Gender, u.PhoneNumber, u.Address)

	inserted, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return inserted, nil
}

func (r *PgRepository) CreateUserWithPatientProfile(ctx context.Context, u User, p PatientProfile) (*User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := r.insertUser(ctx, tx, u)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO patient_profiles (user_id, medical_history, insurance_details, emergency_contact)
		VALUES ($1, $2, $3, $4)
	`, inserted.ID, p.MedicalHistory, p.InsuranceDetails, p.EmergencyContact)
	if err != nil {
		return nil, fmt.Errorf("insert patient profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return inserted, nil
}

func (r *PgRepository) CreateUserWithDoctorProfile(ctx context.Context, u User, d DoctorProfile) (*User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := r.insertUser(ctx, tx, u)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO doctor_profiles (user_id, specialty, license_number, clinic)
		VALUES ($1, $2, $3, $4)
	`, inserted.ID, d.Specialty, d.LicenseNumber, d.Clinic)
	if err != nil {
		return nil, fmt.Errorf("insert doctor profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return inserted, nil
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *PgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, dp.specialty, dp.clinic
		FROM users u
		JOIN doctor_profiles dp ON dp.user_id = u.id
		ORDER BY u.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Specialty, &d.Clinic); err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListUsersByRole(ctx context.Context, role Role, limit, offset int) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, role, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) DashboardSummary(ctx context.Context, weekFrom, weekTo time.Time) (*DashboardSummary, error) {
	var s DashboardSummary

	row := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM appointments),
			(SELECT count(*) FROM appointments WHERE start_at >= $1 AND start_at < $2),
			(SELECT count(*) FROM appointments WHERE status = 'scheduled'),
			(SELECT count(*) FROM appointments WHERE status = 'completed'),
			(SELECT count(*) FROM appointments WHERE status = 'cancelled'),
			(SELECT count(*) FROM users WHERE role = 'patient'),
			(SELECT count(*) FROM users WHERE role = 'doctor')
	`, weekFrom, weekTo)

	err := row.Scan(
		&s.TotalAppointments,
		&s.WeeklyAppointments,
		&s.ScheduledAppointments,
		&s.CompletedAppointments,
		&s.CancelledAppointments,
		&s.TotalPatients,
		&s.TotalDoctors,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}
