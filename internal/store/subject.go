package store

import (
	"context"
	"database/sql"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/google/uuid"
)

// SubjectStore persists subjects.
type SubjectStore interface {
	// Create saves a new subject. Returns ErrSubjectNameExists on a name clash.
	Create(ctx context.Context, subject *domain.Subject) error

	// GetByID retrieves a subject by ID. Returns ErrSubjectNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error)

	// ListByUser returns the user's subjects ordered by name.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subject, error)

	// Update saves the subject's settings.
	Update(ctx context.Context, subject *domain.Subject) error

	// Delete removes the subject; decks, cards and histories cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new SubjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SubjectStore
}
