package store

import (
	"context"
	"database/sql"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/google/uuid"
)

// DeckStore persists decks and the card_decks membership table.
type DeckStore interface {
	// Create saves a new deck. Returns ErrDeckNameExists on a name clash.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by ID. Returns ErrDeckNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// GetByNames returns the subject's decks whose names are in names.
	GetByNames(ctx context.Context, subjectID uuid.UUID, names []string) ([]*domain.Deck, error)

	// ListBySubject returns the subject's decks with card counts, ordered by name.
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]domain.DeckSummary, error)

	// ListByCards returns the decks of each given card, ordered by name.
	ListByCards(ctx context.Context, cardIDs []uuid.UUID) (map[uuid.UUID][]domain.Deck, error)

	// Update saves the deck's name. Returns ErrDeckNameExists on a name clash.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes the deck row. Returns ErrDeckNotFound if missing.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddCards links cards to the deck. Existing links are left alone.
	AddCards(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) error

	// RemoveCards unlinks cards from the deck and returns the number of links removed.
	RemoveCards(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) (int64, error)

	// MemberCardIDs returns which of cardIDs are currently in the deck.
	MemberCardIDs(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error)

	// DetachAll removes every membership of the deck.
	DetachAll(ctx context.Context, deckID uuid.UUID) (int64, error)

	// DetachCards removes every membership of the given cards.
	DetachCards(ctx context.Context, cardIDs []uuid.UUID) error

	// WithTx returns a new DeckStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DeckStore
}
