package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinova/clinic-backend/internal/auth"
	"github.com/clinova/clinic-backend/internal/db"
)

// Everyone seeded shares one password so the API is easy to poke at.
const seedPassword = "password123"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.RunMigrations(dsn); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}

	bg := context.Background()

	if err := seedAdmin(bg, pool, hash); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	doctorIDs, err := seedDoctors(bg, pool, hash, 10)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patientIDs, err := seedPatients(bg, pool, hash, 200)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(bg, pool, doctorIDs, patientIDs, 100); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, hash string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, created_at, updated_at)
		VALUES ($1, 'Clinic Admin', 'admin@clinic.local', 'admin', $2, now(), now())
		ON CONFLICT (email) DO NOTHING
	`, uuid.New(), hash)
	if err != nil {
		return err
	}
	log.Println("admin seeded: admin@clinic.local")
	return nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, hash string, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, role, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, 'doctor', $4, now(), now())
		`, id, name, email, hash)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO doctor_profiles (user_id, specialty, license_number, clinic)
			VALUES ($1, $2, $3, $4)
		`, id, spec, gofakeit.Numerify("LIC-########"), gofakeit.Company())
		if err != nil {
			return nil, err
		}

		// Weekday availability, 09:00-17:00.
		for day := 1; day <= 5; day++ {
			_, err = tx.Exec(ctx, `
				INSERT INTO doctor_availabilities (id, doctor_id, day_of_week, start_time, end_time, created_at)
				VALUES ($1, $2, $3, '09:00', '17:00', now())
			`, uuid.New(), id, day)
			if err != nil {
				return nil, err
			}
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, hash string, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 50

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			dob := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC),
			)

			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, role, password_hash, date_of_birth, gender, phone_number, address, created_at, updated_at)
				VALUES ($1, $2, $3, 'patient', $4, $5, $6, $7, $8, now(), now())
			`, id, gofakeit.Name(), gofakeit.Email(), hash, dob,
				gofakeit.Gender(), gofakeit.Phone(), gofakeit.Address().Address)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO patient_profiles (user_id, medical_history, emergency_contact)
				VALUES ($1, '', $2)
			`, id, gofakeit.Phone())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}

			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return ids, nil
}

// seedAppointments books patients into upcoming weekday slots. Slots are
// picked without replacement per doctor so the unique index never trips.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctorIDs, patientIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	if len(doctorIDs) == 0 || len(patientIDs) == 0 {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Next Monday at midnight UTC.
	now := time.Now().UTC()
	daysAhead := (8 - int(now.Weekday())) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, daysAhead)

	slotsPerDay := 16 // 09:00-17:00 in half hours
	booked := 0
	for slot := 0; booked < count; slot++ {
		day := slot / slotsPerDay
		if day >= 5 {
			break
		}
		startAt := weekStart.AddDate(0, 0, day).
			Add(9*time.Hour + time.Duration(slot%slotsPerDay)*30*time.Minute)

		for _, doctorID := range doctorIDs {
			if booked >= count {
				break
			}
			patientID := patientIDs[gofakeit.Number(0, len(patientIDs)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, patient_id, doctor_id, start_at, status, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, 'scheduled', $5, now(), now())
			`, uuid.New(), patientID, doctorID, startAt, gofakeit.Sentence(6))
			if err != nil {
				return err
			}
			booked++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("appointments seeded: %d", booked)
	return nil
}
