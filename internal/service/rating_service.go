package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// RatingService records how hard a user found a card.
type RatingService interface {
	// RecordRating folds rating (1..5) into the user's history for the card
	// and returns the updated aggregate. The update is a single atomic upsert,
	// so concurrent ratings of the same card are never lost.
	RecordRating(ctx context.Context, userID, cardID uuid.UUID, rating int) (*domain.CardHistory, error)
}

type ratingServiceImpl struct {
	cards     store.CardStore
	histories store.CardHistoryStore
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewRatingService creates a new RatingService
func NewRatingService(cards store.CardStore, histories store.CardHistoryStore, logger *slog.Logger) (RatingService, error) {
	if cards == nil || histories == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ratingServiceImpl{
		cards:     cards,
		histories: histories,
		logger:    logger.With(slog.String("component", "rating_service")),
		timeFunc:  time.Now,
	}, nil
}

// RecordRating implements RatingService.RecordRating
func (s *ratingServiceImpl) RecordRating(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rating int,
) (*domain.CardHistory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateRating(rating); err != nil {
		return nil, NewServiceError("record_rating", "invalid rating", err)
	}
	if _, err := OwnedCard(ctx, s.cards, userID, cardID); err != nil {
		return nil, NewServiceError("record_rating", "failed to retrieve card", err)
	}

	// A card deleted after the ownership check surfaces as ErrCardNotFound
	// from the foreign key on card_history.
	history, err := s.histories.RecordRating(ctx, cardID, userID, rating, s.timeFunc())
	if err != nil {
		log.Debug("failed to record rating",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewServiceError("record_rating", "failed to record rating", err)
	}

	log.Debug("recorded rating",
		slog.String("card_id", cardID.String()),
		slog.Int("rating", rating),
		slog.Int("view_count", history.ViewCount))
	return history, nil
}
