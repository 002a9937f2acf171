package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidStatus   = errors.New("invalid queue status")
	ErrEntryNotFound   = errors.New("queue entry not found")
	ErrPatientNotFound = errors.New("patient not found")
)

// Repository contains all DB interactions needed by the queue service.
type Repository interface {
	// FindPatientIDByName resolves a patient record by exact name match.
	FindPatientIDByName(ctx context.Context, name string) (uuid.UUID, error)

	CreateEntry(ctx context.Context, e *Entry) error
	GetEntryByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// ListEntries returns entries ordered by ascending creation time,
	// optionally narrowed by doctor name and status.
	ListEntries(ctx context.Context, doctorName string, status Status) ([]Entry, error)

	UpdateEntryStatus(ctx context.Context, id uuid.UUID, to Status) (*Entry, error)
}
