package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// cardInsertChunk keeps multi-row inserts well under PostgreSQL's 65535 parameter limit.
const cardInsertChunk = 500

const cardColumns = `id, user_id, subject_id, front, back, hint_front, hint_back, created_at, updated_at`

var cardConstraintErrors = map[string]error{
	constraintCardsSubjectKey: store.ErrCardExists,
	constraintCardsSubjectFK:  store.ErrSubjectNotFound,
}

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCardStore{db: db, logger: componentLogger(logger, "card_store")}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var c domain.Card
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.SubjectID,
		&c.Front,
		&c.Back,
		&c.HintFront,
		&c.HintBack,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	return s.CreateMany(ctx, []*domain.Card{card})
}

// CreateMany implements store.CardStore.CreateMany
// Cards are validated first; nothing is written if any card is invalid.
func (s *PostgresCardStore) CreateMany(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", c.ID.String()))
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	for start := 0; start < len(cards); start += cardInsertChunk {
		end := min(start+cardInsertChunk, len(cards))
		chunk := cards[start:end]

		var sb strings.Builder
		sb.WriteString("INSERT INTO cards (" + cardColumns + ") VALUES ")
		args := make([]any, 0, len(chunk)*9)
		for i, c := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * 9
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9)
			args = append(args, c.ID, c.UserID, c.SubjectID, c.Front, c.Back,
				c.HintFront, c.HintBack, c.CreatedAt, c.UpdatedAt)
		}

		if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
			log.Error("failed to insert cards",
				slog.String("error", err.Error()),
				slog.Int("count", len(chunk)))
			return mapConstraintError(err, cardConstraintErrors)
		}
	}

	log.Debug("cards created", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}
	return card, nil
}

// GetByIDs implements store.CardStore.GetByIDs
func (s *PostgresCardStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ANY($1::uuid[])`
	return s.queryCards(ctx, query, uuidArray(ids))
}

// FindByKey implements store.CardStore.FindByKey
func (s *PostgresCardStore) FindByKey(
	ctx context.Context,
	subjectID uuid.UUID,
	key domain.CardKey,
) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE subject_id = $1 AND front = $2 AND back = $3`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, subjectID, key.Front, key.Back))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}
	return card, nil
}

// FindExistingKeys implements store.CardStore.FindExistingKeys
func (s *PostgresCardStore) FindExistingKeys(
	ctx context.Context,
	subjectID uuid.UUID,
	keys []domain.CardKey,
) (map[domain.CardKey]struct{}, error) {
	existing := make(map[domain.CardKey]struct{})
	if len(keys) == 0 {
		return existing, nil
	}

	fronts := make([]string, len(keys))
	backs := make([]string, len(keys))
	for i, k := range keys {
		fronts[i] = k.Front
		backs[i] = k.Back
	}

	query := `
		SELECT c.front, c.back
		FROM cards c
		JOIN unnest($2::text[], $3::text[]) AS k(front, back)
		  ON c.front = k.front AND c.back = k.back
		WHERE c.subject_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID, fronts, backs)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var k domain.CardKey
		if err := rows.Scan(&k.Front, &k.Back); err != nil {
			return nil, MapError(err)
		}
		existing[k] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return existing, nil
}

// ListBySubject implements store.CardStore.ListBySubject
func (s *PostgresCardStore) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE subject_id = $1 ORDER BY seq`
	return s.queryCards(ctx, query, subjectID)
}

// ListByDeck implements store.CardStore.ListByDeck
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	query := `
		SELECT c.id, c.user_id, c.subject_id, c.front, c.back, c.hint_front, c.hint_back, c.created_at, c.updated_at
		FROM cards c
		JOIN card_decks cd ON cd.card_id = c.id
		WHERE cd.deck_id = $1
		ORDER BY c.seq
	`
	return s.queryCards(ctx, query, deckID)
}

// Update implements store.CardStore.Update
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET front = $2, back = $3, hint_front = $4, hint_back = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		card.ID, card.Front, card.Back, card.HintFront, card.HintBack, card.UpdatedAt)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return mapConstraintError(err, cardConstraintErrors)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// DeleteMany implements store.CardStore.DeleteMany
func (s *PostgresCardStore) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ANY($1::uuid[])`, uuidArray(ids))
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("cards deleted", slog.Int64("count", n))
	return n, nil
}

// ExportRowsBySubject implements store.CardStore.ExportRowsBySubject
func (s *PostgresCardStore) ExportRowsBySubject(ctx context.Context, subjectID uuid.UUID) ([]domain.CardDeckRow, error) {
	query := `
		SELECT c.id, c.front, c.back, c.hint_front, c.hint_back, d.name
		FROM cards c
		LEFT JOIN card_decks cd ON cd.card_id = c.id
		LEFT JOIN decks d ON d.id = cd.deck_id
		WHERE c.subject_id = $1
		ORDER BY c.seq, d.name
	`
	return s.queryExportRows(ctx, query, subjectID)
}

// ExportRowsByDeck implements store.CardStore.ExportRowsByDeck
func (s *PostgresCardStore) ExportRowsByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.CardDeckRow, error) {
	query := `
		SELECT c.id, c.front, c.back, c.hint_front, c.hint_back, d.name
		FROM card_decks cd
		JOIN cards c ON c.id = cd.card_id
		JOIN decks d ON d.id = cd.deck_id
		WHERE cd.deck_id = $1
		ORDER BY c.seq
	`
	return s.queryExportRows(ctx, query, deckID)
}

func (s *PostgresCardStore) queryExportRows(ctx context.Context, query string, id uuid.UUID) ([]domain.CardDeckRow, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query export rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.CardDeckRow
	for rows.Next() {
		var r domain.CardDeckRow
		if err := rows.Scan(&r.CardID, &r.Front, &r.Back, &r.HintFront, &r.HintBack, &r.DeckName); err != nil {
			return nil, MapError(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}
