package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StatsService summarizes a user's study activity.
type StatsService interface {
	// GetUserStats returns card totals, view totals, the distribution of last
	// ratings and the hardest and most viewed cards. Absent cards are nil.
	GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
}

type statsServiceImpl struct {
	stats     store.StatsStore
	cards     store.CardStore
	decks     store.DeckStore
	histories store.CardHistoryStore
	logger    *slog.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(
	stats store.StatsStore,
	cards store.CardStore,
	decks store.DeckStore,
	histories store.CardHistoryStore,
	logger *slog.Logger,
) (StatsService, error) {
	if stats == nil || cards == nil || decks == nil || histories == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &statsServiceImpl{
		stats:     stats,
		cards:     cards,
		decks:     decks,
		histories: histories,
		logger:    logger.With(slog.String("component", "stats_service")),
	}, nil
}

// GetUserStats implements StatsService.GetUserStats
// The aggregate queries are independent and run concurrently.
func (s *statsServiceImpl) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		stats        domain.UserStats
		ratingCounts map[int]int
		hardestID    uuid.UUID
		mostViewedID uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.stats.CountCards(gctx, userID)
		stats.TotalCards = n
		return err
	})
	g.Go(func() error {
		n, err := s.stats.CountUnviewedCards(gctx, userID)
		stats.TotalUnviewedCards = n
		return err
	})
	g.Go(func() error {
		n, err := s.stats.SumViews(gctx, userID)
		stats.TotalCardViews = n
		return err
	})
	g.Go(func() error {
		var err error
		ratingCounts, err = s.stats.LastRatingCounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		hardestID, err = optionalCardID(s.stats.HardestCardID(gctx, userID))
		return err
	})
	g.Go(func() error {
		var err error
		mostViewedID, err = optionalCardID(s.stats.MostViewedCardID(gctx, userID))
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to compute user stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("get_user_stats", "failed to compute stats", err)
	}

	for rating, count := range ratingCounts {
		stats.SetLastRatingCount(rating, count)
	}

	var err error
	if stats.HardestCard, err = s.details(ctx, userID, hardestID); err != nil {
		return nil, NewServiceError("get_user_stats", "failed to load hardest card", err)
	}
	if stats.MostViewedCard, err = s.details(ctx, userID, mostViewedID); err != nil {
		return nil, NewServiceError("get_user_stats", "failed to load most viewed card", err)
	}
	return &stats, nil
}

// optionalCardID turns "no such card" into uuid.Nil.
func optionalCardID(id uuid.UUID, err error) (uuid.UUID, error) {
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, nil
	}
	return id, err
}

func (s *statsServiceImpl) details(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardDetails, error) {
	if cardID == uuid.Nil {
		return nil, nil
	}
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	details, err := cardDetails(ctx, s.decks, s.histories, userID, []*domain.Card{card})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}
