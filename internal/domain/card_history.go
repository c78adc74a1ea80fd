package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds. 1 is easy, 5 is impossible.
const (
	MinRating = 1
	MaxRating = 5
)

// CardHistory is the per-user rolling rating aggregate for a card.
// There is at most one row per (card, user).
type CardHistory struct {
	CardID     uuid.UUID `json:"cardId"`
	UserID     uuid.UUID `json:"userId"`
	AvgRating  float64   `json:"avgRating"`
	ViewCount  int       `json:"viewCount"`
	LastRating int       `json:"lastRating"`
	LastViewed time.Time `json:"lastViewed"`
}

// ValidateRating returns a validation error unless rating is within 1..5.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5", ErrInvalidRating)
	}
	return nil
}

// Record folds one rating into the aggregate using an incremental mean.
// The zero value is an aggregate with no prior ratings.
func (h *CardHistory) Record(rating int, at time.Time) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	n := h.ViewCount + 1
	h.AvgRating = (h.AvgRating*float64(h.ViewCount) + float64(rating)) / float64(n)
	h.ViewCount = n
	h.LastRating = rating
	h.LastViewed = at.UTC()
	return nil
}

// NewCardHistory creates the aggregate for the first rating of a card by a user.
func NewCardHistory(cardID, userID uuid.UUID, rating int, at time.Time) (*CardHistory, error) {
	h := &CardHistory{CardID: cardID, UserID: userID}
	if err := h.Record(rating, at); err != nil {
		return nil, err
	}
	return h, nil
}

// CardDeckRow is one (card, deck) pairing used for export. DeckName is nil
// when the card belongs to no deck in the selected scope.
type CardDeckRow struct {
	CardID    uuid.UUID
	Front     string
	Back      string
	HintFront *string
	HintBack  *string
	DeckName  *string
}

// CardDetails is a card together with its decks and the viewing user's history.
type CardDetails struct {
	Card
	Decks   []Deck       `json:"decks"`
	History *CardHistory `json:"history,omitempty"`
}
