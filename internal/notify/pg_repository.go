package notify

import (
	"context"
	"errors"
	"time"

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

func (r *PgRepository) FindUnnotified(ctx context.Context, from, to time.Time) ([]UpcomingAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.patient_id, u.name, a.start_at
		FROM appointments a
		JOIN users u ON u.id = a.doctor_id
		WHERE a.status = 'scheduled'
		  AND a.start_at >= $1
		  AND a.start_at < $2
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.appointment_id = a.id AND n.user_id = a.patient_id
		  )
		ORDER BY a.start_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UpcomingAppointment
	for rows.Next() {
		var a UpcomingAppointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorName, &a.StartAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, appointment_id, message, status, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, n.ID, n.UserID, n.AppointmentID, n.Message, n.Status, n.SentAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyNotified
		}
		return err
	}
	return nil
}
