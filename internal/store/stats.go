package store

import (
	"context"

	"github.com/google/uuid"
)

// StatsStore runs the aggregate queries behind the user statistics view.
// Each method is a single read-only query so they can run concurrently.
type StatsStore interface {
	// CountCards returns the number of cards the user owns.
	CountCards(ctx context.Context, userID uuid.UUID) (int, error)

	// CountUnviewedCards returns how many of the user's cards they have never rated.
	CountUnviewedCards(ctx context.Context, userID uuid.UUID) (int, error)

	// SumViews returns the total number of ratings the user has recorded.
	SumViews(ctx context.Context, userID uuid.UUID) (int, error)

	// LastRatingCounts returns, per rating value, how many cards were last rated with it.
	LastRatingCounts(ctx context.Context, userID uuid.UUID) (map[int]int, error)

	// HardestCardID returns the card with the highest average rating.
	// Returns ErrCardNotFound if the user has rated nothing.
	HardestCardID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)

	// MostViewedCardID returns the card with the most ratings.
	// Returns ErrCardNotFound if the user has rated nothing.
	MostViewedCardID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}
