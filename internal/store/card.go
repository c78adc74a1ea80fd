package store

import (
	"context"
	"database/sql"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/google/uuid"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. Returns ErrCardExists if the subject already
	// holds a card with the same front and back.
	Create(ctx context.Context, card *domain.Card) error

	// CreateMany saves cards in a single statement.
	CreateMany(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by ID. Returns ErrCardNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDs returns the cards that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Card, error)

	// FindByKey looks up a card in a subject by its exact front and back.
	// Returns ErrCardNotFound if there is none.
	FindByKey(ctx context.Context, subjectID uuid.UUID, key domain.CardKey) (*domain.Card, error)

	// FindExistingKeys returns which of keys already exist in the subject.
	FindExistingKeys(ctx context.Context, subjectID uuid.UUID, keys []domain.CardKey) (map[domain.CardKey]struct{}, error)

	// ListBySubject returns the subject's cards ordered by creation time.
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.Card, error)

	// ListByDeck returns the deck's cards ordered by creation time.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error)

	// Update saves the card's content.
	Update(ctx context.Context, card *domain.Card) error

	// DeleteMany removes the given cards and returns how many rows were deleted.
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ExportRowsBySubject returns one row per (card, deck) pairing in the subject.
	ExportRowsBySubject(ctx context.Context, subjectID uuid.UUID) ([]domain.CardDeckRow, error)

	// ExportRowsByDeck returns one row per card in the deck, carrying only that deck's name.
	ExportRowsByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.CardDeckRow, error)

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
