package service_test

import (
	"context"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRatingSequence(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	card := f.newCard(t, f.subject, "Front 1", "Back 1")

	var last *domain.CardHistory
	for _, r := range []int{5, 3, 4} {
		h, err := f.ratings.RecordRating(ctx, f.user.ID, card.ID, r)
		require.NoError(t, err)
		last = h
	}

	assert.Equal(t, 3, last.ViewCount)
	assert.InDelta(t, 4.0, last.AvgRating, 1e-9)
	assert.Equal(t, 4, last.LastRating)
	assert.False(t, last.LastViewed.IsZero())
}

func TestRecordRatingErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	card := f.newCard(t, f.subject, "q", "a")
	mallory := f.newUser(t, "mallory")

	tests := []struct {
		name    string
		userID  uuid.UUID
		cardID  uuid.UUID
		rating  int
		wantErr error
	}{
		{"rating too low", f.user.ID, card.ID, 0, domain.ErrValidation},
		{"rating too high", f.user.ID, card.ID, 6, domain.ErrInvalidRating},
		{"missing card", f.user.ID, uuid.New(), 3, store.ErrCardNotFound},
		{"foreign card", mallory.ID, card.ID, 3, store.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ratings.RecordRating(ctx, tc.userID, tc.cardID, tc.rating)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	got, err := f.cards.GetCard(ctx, f.user.ID, card.ID)
	require.NoError(t, err)
	assert.Nil(t, got.History, "failed ratings leave no history")
}
