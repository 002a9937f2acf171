package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrInvalidStatus       = errors.New("invalid appointment status")
)

// ListFilter narrows appointment listings. Zero values mean "no filter".
type ListFilter struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    Status
	Limit     int
	Offset    int
}

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context, f ListFilter) ([]Appointment, error)

	// UpdateAppointmentStatus mutates the status column only.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error)

	// FindStartingBetween supports the reminder worker.
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
}
