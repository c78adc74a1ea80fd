package store

import (
	"context"
	"database/sql"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. Returns ErrUsernameExists or ErrAuthSubjectExists
	// when a unique field is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByAuthSubject retrieves a user by external identity.
	// Returns ErrUserNotFound if missing.
	GetByAuthSubject(ctx context.Context, authSubject string) (*domain.User, error)

	// ListActive returns all active users ordered by username.
	ListActive(ctx context.Context) ([]*domain.User, error)

	// Update saves username and active flag.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
