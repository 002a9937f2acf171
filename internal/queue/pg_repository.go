package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID,
		&e.PatientID,
		&e.PatientName,
		&e.DoctorName,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PgRepository) FindPatientIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id
		FROM patients
		WHERE name = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrPatientNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *PgRepository) CreateEntry(ctx context.Context, e *Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients_queue (id, patient_id, patient_name, doctor_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.PatientID, e.PatientName, e.DoctorName, e.Status, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *PgRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, patient_name, doctor_name, status, created_at, updated_at
		FROM patients_queue
		WHERE id = $1
	`, id)
	return scanEntry(row)
}

func (r *PgRepository) ListEntries(ctx context.Context, doctorName string, status Status) ([]Entry, error) {
	var statusFilter *string
	if status != "" {
		s := string(status)
		statusFilter = &s
	}
	var doctorFilter *string
	if doctorName != "" {
		doctorFilter = &doctorName
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, patient_name, doctor_name, status, created_at, updated_at
		FROM patients_queue
		WHERE ($1::text IS NULL OR doctor_name = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at ASC
	`, doctorFilter, statusFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpdateEntryStatus(ctx context.Context, id uuid.UUID, to Status) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients_queue
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, patient_id, patient_name, doctor_name, status, created_at, updated_at
	`, id, to)
	return scanEntry(row)
}
