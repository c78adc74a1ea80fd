package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/google/uuid"
)

// CardHistoryStore persists per-user rating aggregates.
type CardHistoryStore interface {
	// RecordRating atomically creates or updates the (card, user) aggregate
	// and returns the new state. Returns ErrCardNotFound if the card does not exist.
	RecordRating(ctx context.Context, cardID, userID uuid.UUID, rating int, at time.Time) (*domain.CardHistory, error)

	// Get returns the aggregate for (card, user), or ErrCardHistoryNotFound.
	Get(ctx context.Context, cardID, userID uuid.UUID) (*domain.CardHistory, error)

	// ListByCards returns the user's aggregates for the given cards, keyed by card ID.
	ListByCards(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) (map[uuid.UUID]*domain.CardHistory, error)

	// DeleteByCards removes all aggregates for the given cards, for every user.
	DeleteByCards(ctx context.Context, cardIDs []uuid.UUID) error

	// WithTx returns a new CardHistoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardHistoryStore
}
