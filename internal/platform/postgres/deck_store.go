package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

const deckColumns = `id, user_id, subject_id, name, created_at, updated_at`

var deckConstraintErrors = map[string]error{
	constraintDecksSubjectName: store.ErrDeckNameExists,
	constraintDecksSubjectFK:   store.ErrSubjectNotFound,
	constraintCardDecksCardFK:  store.ErrCardNotFound,
	constraintCardDecksDeckFK:  store.ErrDeckNotFound,
}

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresDeckStore{db: db, logger: componentLogger(logger, "deck_store")}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

func scanDeck(row rowScanner, extra ...any) (*domain.Deck, error) {
	var d domain.Deck
	dest := append([]any{&d.ID, &d.UserID, &d.SubjectID, &d.Name, &d.CreatedAt, &d.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create implements store.DeckStore.Create
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO decks (` + deckColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		deck.ID, deck.UserID, deck.SubjectID, deck.Name, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		log.Warn("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("subject_id", deck.SubjectID.String()),
			slog.String("name", deck.Name))
		return mapConstraintError(err, deckConstraintErrors)
	}

	log.Debug("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("subject_id", deck.SubjectID.String()))
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = $1`
	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, MapError(err)
	}
	return deck, nil
}

// GetByNames implements store.DeckStore.GetByNames
func (s *PostgresDeckStore) GetByNames(ctx context.Context, subjectID uuid.UUID, names []string) ([]*domain.Deck, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query := `SELECT ` + deckColumns + ` FROM decks WHERE subject_id = $1 AND name = ANY($2::text[])`
	rows, err := s.db.QueryContext(ctx, query, subjectID, names)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, MapError(err)
		}
		decks = append(decks, d)
	}
	return decks, MapError(rows.Err())
}

// ListBySubject implements store.DeckStore.ListBySubject
func (s *PostgresDeckStore) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]domain.DeckSummary, error) {
	query := `
		SELECT d.id, d.user_id, d.subject_id, d.name, d.created_at, d.updated_at, COUNT(cd.card_id)
		FROM decks d
		LEFT JOIN card_decks cd ON cd.deck_id = d.id
		WHERE d.subject_id = $1
		GROUP BY d.id
		ORDER BY d.name
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.DeckSummary
	for rows.Next() {
		var count int
		d, err := scanDeck(rows, &count)
		if err != nil {
			return nil, MapError(err)
		}
		out = append(out, domain.DeckSummary{Deck: *d, CardCount: count})
	}
	return out, MapError(rows.Err())
}

// ListByCards implements store.DeckStore.ListByCards
func (s *PostgresDeckStore) ListByCards(ctx context.Context, cardIDs []uuid.UUID) (map[uuid.UUID][]domain.Deck, error) {
	out := make(map[uuid.UUID][]domain.Deck)
	if len(cardIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT d.id, d.user_id, d.subject_id, d.name, d.created_at, d.updated_at, cd.card_id
		FROM card_decks cd
		JOIN decks d ON d.id = cd.deck_id
		WHERE cd.card_id = ANY($1::uuid[])
		ORDER BY d.name
	`
	rows, err := s.db.QueryContext(ctx, query, uuidArray(cardIDs))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cardID uuid.UUID
		d, err := scanDeck(rows, &cardID)
		if err != nil {
			return nil, MapError(err)
		}
		out[cardID] = append(out[cardID], *d)
	}
	return out, MapError(rows.Err())
}

// Update implements store.DeckStore.Update
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE decks SET name = $2, updated_at = $3 WHERE id = $1`,
		deck.ID, deck.Name, deck.UpdatedAt)
	if err != nil {
		return mapConstraintError(err, deckConstraintErrors)
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}

// Delete implements store.DeckStore.Delete
func (s *PostgresDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}

// AddCards implements store.DeckStore.AddCards
func (s *PostgresDeckStore) AddCards(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) error {
	if len(cardIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO card_decks (card_id, deck_id)
		SELECT card_id, $1::uuid FROM unnest($2::uuid[]) AS card_id
		ON CONFLICT DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, deckID, uuidArray(cardIDs)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add cards to deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()),
			slog.Int("count", len(cardIDs)))
		return mapConstraintError(err, deckConstraintErrors)
	}
	return nil
}

// RemoveCards implements store.DeckStore.RemoveCards
func (s *PostgresDeckStore) RemoveCards(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) (int64, error) {
	if len(cardIDs) == 0 {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM card_decks WHERE deck_id = $1 AND card_id = ANY($2::uuid[])`,
		deckID, uuidArray(cardIDs))
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}

// MemberCardIDs implements store.DeckStore.MemberCardIDs
func (s *PostgresDeckStore) MemberCardIDs(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id FROM card_decks WHERE deck_id = $1 AND card_id = ANY($2::uuid[])`,
		deckID, uuidArray(cardIDs))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	return ids, MapError(rows.Err())
}

// DetachAll implements store.DeckStore.DetachAll
func (s *PostgresDeckStore) DetachAll(ctx context.Context, deckID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM card_decks WHERE deck_id = $1`, deckID)
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}

// DetachCards implements store.DeckStore.DetachCards
func (s *PostgresDeckStore) DetachCards(ctx context.Context, cardIDs []uuid.UUID) error {
	if len(cardIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM card_decks WHERE card_id = ANY($1::uuid[])`, uuidArray(cardIDs))
	return MapError(err)
}
