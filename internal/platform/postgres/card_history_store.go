package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

const historyColumns = `card_id, user_id, avg_rating, view_count, last_rating, last_viewed`

var historyConstraintErrors = map[string]error{
	constraintCardHistoryCardFK: store.ErrCardNotFound,
	constraintCardHistoryUserFK: store.ErrUserNotFound,
}

// recordRatingQuery folds a rating into the aggregate in one statement. The
// conflicting row is locked for the duration of the update, so concurrent
// ratings for the same (card, user) are applied one after the other.
const recordRatingQuery = `
	INSERT INTO card_history AS h (card_id, user_id, avg_rating, view_count, last_rating, last_viewed)
	VALUES ($1, $2, $3, 1, $4, $5)
	ON CONFLICT (card_id, user_id) DO UPDATE SET
		avg_rating  = (h.avg_rating * h.view_count + EXCLUDED.avg_rating) / (h.view_count + 1),
		view_count  = h.view_count + 1,
		last_rating = EXCLUDED.last_rating,
		last_viewed = EXCLUDED.last_viewed
	RETURNING card_id, user_id, avg_rating, view_count, last_rating, last_viewed
`

// PostgresCardHistoryStore implements the store.CardHistoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardHistoryStore creates a new PostgreSQL implementation of the CardHistoryStore interface.
func NewPostgresCardHistoryStore(db store.DBTX, logger *slog.Logger) *PostgresCardHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCardHistoryStore{db: db, logger: componentLogger(logger, "card_history_store")}
}

// Ensure PostgresCardHistoryStore implements store.CardHistoryStore interface
var _ store.CardHistoryStore = (*PostgresCardHistoryStore)(nil)

// WithTx implements store.CardHistoryStore.WithTx
func (s *PostgresCardHistoryStore) WithTx(tx *sql.Tx) store.CardHistoryStore {
	return &PostgresCardHistoryStore{db: tx, logger: s.logger}
}

func scanHistory(row rowScanner) (*domain.CardHistory, error) {
	var h domain.CardHistory
	if err := row.Scan(&h.CardID, &h.UserID, &h.AvgRating, &h.ViewCount, &h.LastRating, &h.LastViewed); err != nil {
		return nil, err
	}
	return &h, nil
}

// RecordRating implements store.CardHistoryStore.RecordRating
func (s *PostgresCardHistoryStore) RecordRating(
	ctx context.Context,
	cardID, userID uuid.UUID,
	rating int,
	at time.Time,
) (*domain.CardHistory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}

	h, err := scanHistory(s.db.QueryRowContext(ctx, recordRatingQuery,
		cardID, userID, float64(rating), rating, at.UTC()))
	if err != nil {
		mapped := mapConstraintError(err, historyConstraintErrors)
		if errors.Is(mapped, store.ErrNotFound) {
			log.Debug("rating rejected for missing reference",
				slog.String("card_id", cardID.String()),
				slog.String("error", err.Error()))
		} else {
			log.Error("failed to record rating",
				slog.String("error", err.Error()),
				slog.String("card_id", cardID.String()),
				slog.String("user_id", userID.String()))
		}
		return nil, mapped
	}

	log.Debug("rating recorded",
		slog.String("card_id", cardID.String()),
		slog.Int("rating", rating),
		slog.Int("view_count", h.ViewCount))
	return h, nil
}

// Get implements store.CardHistoryStore.Get
func (s *PostgresCardHistoryStore) Get(ctx context.Context, cardID, userID uuid.UUID) (*domain.CardHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM card_history WHERE card_id = $1 AND user_id = $2`
	h, err := scanHistory(s.db.QueryRowContext(ctx, query, cardID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardHistoryNotFound
		}
		return nil, MapError(err)
	}
	return h, nil
}

// ListByCards implements store.CardHistoryStore.ListByCards
func (s *PostgresCardHistoryStore) ListByCards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) (map[uuid.UUID]*domain.CardHistory, error) {
	out := make(map[uuid.UUID]*domain.CardHistory)
	if len(cardIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + historyColumns + ` FROM card_history WHERE user_id = $1 AND card_id = ANY($2::uuid[])`
	rows, err := s.db.QueryContext(ctx, query, userID, uuidArray(cardIDs))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, MapError(err)
		}
		out[h.CardID] = h
	}
	return out, MapError(rows.Err())
}

// DeleteByCards implements store.CardHistoryStore.DeleteByCards
func (s *PostgresCardHistoryStore) DeleteByCards(ctx context.Context, cardIDs []uuid.UUID) error {
	if len(cardIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM card_history WHERE card_id = ANY($1::uuid[])`, uuidArray(cardIDs))
	return MapError(err)
}
