package service_test

import (
	"context"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := service.NewCardService(nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates card and decks", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		res, err := f.cards.CreateCard(ctx, f.user.ID, f.subject.ID, service.CardInput{
			Front:     " hola ",
			Back:      "hello",
			HintFront: strPtr("greeting"),
			DeckNames: []string{"Verbs", "Basics", "Verbs"},
		})
		require.NoError(t, err)
		assert.False(t, res.AlreadyExisted)
		assert.Equal(t, "hola", res.Card.Front)
		assert.Equal(t, []string{"Basics", "Verbs"}, deckNames(res.Card.Decks))
		assert.Nil(t, res.Card.History)
		assert.Equal(t, 2, f.db.DeckCount())
	})

	t.Run("returns existing card for same front and back", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		first := f.newCard(t, f.subject, "hola", "hello")

		res, err := f.cards.CreateCard(ctx, f.user.ID, f.subject.ID, service.CardInput{
			Front:     "hola",
			Back:      "hello",
			DeckNames: []string{"Verbs"},
		})
		require.NoError(t, err)
		assert.True(t, res.AlreadyExisted)
		assert.Equal(t, first.ID, res.Card.ID)
		assert.Equal(t, 1, f.db.CardCount())
		assert.Empty(t, res.Card.Decks, "deck names are ignored for an existing card")
		assert.Zero(t, f.db.DeckCount())
	})

	t.Run("same text in another subject is a new card", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.newCard(t, f.subject, "hola", "hello")
		other := f.newSubject(t, f.user.ID, "Portuguese")

		res, err := f.cards.CreateCard(ctx, f.user.ID, other.ID, service.CardInput{Front: "hola", Back: "hello"})
		require.NoError(t, err)
		assert.False(t, res.AlreadyExisted)
	})

	t.Run("invalid content", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.cards.CreateCard(ctx, f.user.ID, f.subject.ID, service.CardInput{Front: "", Back: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("foreign subject is not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		mallory := f.newUser(t, "mallory")

		_, err := f.cards.CreateCard(ctx, mallory.ID, f.subject.ID, service.CardInput{Front: "a", Back: "b"})
		assert.ErrorIs(t, err, store.ErrSubjectNotFound)
	})
}

func TestCreateCardsBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	results, err := f.cards.CreateCards(ctx, f.user.ID, f.subject.ID, []service.CardInput{
		{Front: "uno", Back: "one", DeckNames: []string{"Numbers"}},
		{Front: "dos", Back: "two", DeckNames: []string{"Numbers"}},
		{Front: "uno", Back: "one"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.False(t, results[0].AlreadyExisted)
	assert.False(t, results[1].AlreadyExisted)
	assert.True(t, results[2].AlreadyExisted)
	assert.Equal(t, results[0].Card.ID, results[2].Card.ID)
	assert.Equal(t, 2, f.db.CardCount())
	assert.Equal(t, 1, f.db.DeckCount())

	_, err = f.cards.CreateCards(ctx, f.user.ID, f.subject.ID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.cards.CreateCards(ctx, f.user.ID, f.subject.ID, []service.CardInput{
		{Front: "tres", Back: "three"},
		{Front: "", Back: "broken"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 2, f.db.CardCount(), "a failed batch persists nothing")
}

func TestGetCardIncludesHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	card := f.newCard(t, f.subject, "q", "a", "Deck 1")

	_, err := f.ratings.RecordRating(ctx, f.user.ID, card.ID, 4)
	require.NoError(t, err)

	got, err := f.cards.GetCard(ctx, f.user.ID, card.ID)
	require.NoError(t, err)
	require.NotNil(t, got.History)
	assert.Equal(t, 1, got.History.ViewCount)
	assert.Equal(t, 4, got.History.LastRating)
	assert.Equal(t, []string{"Deck 1"}, deckNames(got.Decks))

	_, err = f.cards.GetCard(ctx, f.user.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	mallory := f.newUser(t, "mallory")
	_, err = f.cards.GetCard(ctx, mallory.ID, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestListCards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.newCard(t, f.subject, "1", "one")
	c2 := f.newCard(t, f.subject, "2", "two")
	c3 := f.newCard(t, f.subject, "3", "three")
	_, err := f.ratings.RecordRating(ctx, f.user.ID, c1.ID, 5)
	require.NoError(t, err)
	_, err = f.ratings.RecordRating(ctx, f.user.ID, c2.ID, 2)
	require.NoError(t, err)

	ids := func(cards []*domain.CardDetails) []uuid.UUID {
		out := make([]uuid.UUID, len(cards))
		for i, c := range cards {
			out[i] = c.ID
		}
		return out
	}

	tests := []struct {
		name   string
		order  domain.CardOrder
		filter service.CardFilter
		want   []uuid.UUID
	}{
		{"newest first by default", domain.OrderNewest, service.CardFilter{}, []uuid.UUID{c3.ID, c2.ID, c1.ID}},
		{"oldest first", domain.OrderOldest, service.CardFilter{}, []uuid.UUID{c1.ID, c2.ID, c3.ID}},
		{"min rating excludes unrated", domain.OrderOldest, service.CardFilter{MinAvgRating: floatPtr(3)}, []uuid.UUID{c1.ID}},
		{"max rating", domain.OrderOldest, service.CardFilter{MaxAvgRating: floatPtr(2)}, []uuid.UUID{c2.ID}},
		{"both bounds", domain.OrderOldest, service.CardFilter{MinAvgRating: floatPtr(1), MaxAvgRating: floatPtr(5)}, []uuid.UUID{c1.ID, c2.ID}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.subjects.UpdateSubject(ctx, f.user.ID, f.subject.ID, domain.SubjectSettings{
				Name:      f.subject.Name,
				CardOrder: tc.order,
			})
			require.NoError(t, err)

			got, err := f.cards.ListCards(ctx, f.user.ID, f.subject.ID, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}

	t.Run("shuffle keeps every card", func(t *testing.T) {
		got, err := f.cards.ListCards(ctx, f.user.ID, f.subject.ID, service.CardFilter{Shuffle: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{c1.ID, c2.ID, c3.ID}, ids(got))
	})
}

func TestUpdateCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces content and decks", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		card := f.newCard(t, f.subject, "q", "a", "Old", "Kept")

		got, err := f.cards.UpdateCard(ctx, f.user.ID, card.ID, service.CardInput{
			Front:     "q2",
			Back:      "a2",
			DeckNames: []string{"Kept", "New"},
		})
		require.NoError(t, err)
		assert.Equal(t, "q2", got.Front)
		assert.Equal(t, []string{"Kept", "New"}, deckNames(got.Decks))
	})

	t.Run("nil deck names keeps memberships", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		card := f.newCard(t, f.subject, "q", "a", "Deck")

		got, err := f.cards.UpdateCard(ctx, f.user.ID, card.ID, service.CardInput{Front: "q", Back: "b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Deck"}, deckNames(got.Decks))
	})

	t.Run("duplicate text conflicts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.newCard(t, f.subject, "taken", "pair")
		card := f.newCard(t, f.subject, "q", "a")

		_, err := f.cards.UpdateCard(ctx, f.user.ID, card.ID, service.CardInput{Front: "taken", Back: "pair"})
		assert.ErrorIs(t, err, store.ErrDuplicate)

		got, err := f.cards.GetCard(ctx, f.user.ID, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "q", got.Front)
	})
}

func TestSetHints(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	card := f.newCard(t, f.subject, "q", "a")

	got, err := f.cards.SetHints(ctx, f.user.ID, card.ID, strPtr(" think "), strPtr("  "))
	require.NoError(t, err)
	assert.Equal(t, "think", domain.StringValue(got.HintFront))
	assert.Nil(t, got.HintBack)
}

func TestDeleteCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes cards with history and memberships", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c1 := f.newCard(t, f.subject, "1", "one", "Deck")
		c2 := f.newCard(t, f.subject, "2", "two", "Deck")
		_, err := f.ratings.RecordRating(ctx, f.user.ID, c1.ID, 3)
		require.NoError(t, err)

		require.NoError(t, f.cards.DeleteCards(ctx, f.user.ID, []uuid.UUID{c1.ID, c1.ID}))
		assert.Equal(t, 1, f.db.CardCount())
		assert.Equal(t, 1, f.db.MembershipCount())
		assert.True(t, f.db.IsMember(c2.ID, c2.Decks[0].ID))

		stats, err := f.stats.GetUserStats(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalCardViews)
	})

	t.Run("unknown id deletes nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c1 := f.newCard(t, f.subject, "1", "one")
		missing := uuid.New()

		err := f.cards.DeleteCards(ctx, f.user.ID, []uuid.UUID{c1.ID, missing})
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)

		var nf *service.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []uuid.UUID{missing}, nf.IDs)
		assert.Equal(t, 1, f.db.CardCount())
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.ErrorIs(t, f.cards.DeleteCards(ctx, f.user.ID, nil), domain.ErrValidation)
	})
}
