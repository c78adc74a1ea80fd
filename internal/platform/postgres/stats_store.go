package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// PostgresStatsStore implements the store.StatsStore interface.
// It is read-only and is given the pool rather than a transaction so its
// queries can run in parallel.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the StatsStore interface.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresStatsStore{db: db, logger: componentLogger(logger, "stats_store")}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

func (s *PostgresStatsStore) count(ctx context.Context, query string, userID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CountCards implements store.StatsStore.CountCards
func (s *PostgresStatsStore) CountCards(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM cards WHERE user_id = $1`, userID)
}

// CountUnviewedCards implements store.StatsStore.CountUnviewedCards
func (s *PostgresStatsStore) CountUnviewedCards(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*)
		FROM cards c
		WHERE c.user_id = $1
		  AND NOT EXISTS (SELECT 1 FROM card_history h WHERE h.card_id = c.id AND h.user_id = $1)
	`, userID)
}

// SumViews implements store.StatsStore.SumViews
func (s *PostgresStatsStore) SumViews(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT COALESCE(SUM(view_count), 0) FROM card_history WHERE user_id = $1`, userID)
}

// LastRatingCounts implements store.StatsStore.LastRatingCounts
func (s *PostgresStatsStore) LastRatingCounts(ctx context.Context, userID uuid.UUID) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT last_rating, COUNT(*) FROM card_history WHERE user_id = $1 GROUP BY last_rating`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int]int, 5)
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, MapError(err)
		}
		counts[rating] = n
	}
	return counts, MapError(rows.Err())
}

func (s *PostgresStatsStore) topCard(ctx context.Context, orderBy string, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	query := `SELECT card_id FROM card_history WHERE user_id = $1 ORDER BY ` + orderBy + ` LIMIT 1`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrCardNotFound
		}
		s.logger.Error("failed to query top card", slog.String("error", err.Error()))
		return uuid.Nil, MapError(err)
	}
	return id, nil
}

// HardestCardID implements store.StatsStore.HardestCardID
func (s *PostgresStatsStore) HardestCardID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.topCard(ctx, "avg_rating DESC, view_count DESC, last_viewed DESC", userID)
}

// MostViewedCardID implements store.StatsStore.MostViewedCardID
func (s *PostgresStatsStore) MostViewedCardID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.topCard(ctx, "view_count DESC, avg_rating DESC, last_viewed DESC", userID)
}
