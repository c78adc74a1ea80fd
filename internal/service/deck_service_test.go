package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	card := f.newCard(t, f.subject, "q", "a")

	deck, err := f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, " Verbs ", []uuid.UUID{card.ID})
	require.NoError(t, err)
	assert.Equal(t, "Verbs", deck.Name)
	assert.True(t, f.db.IsMember(card.ID, deck.ID))

	_, err = f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "Verbs", nil)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "Ghost cards", []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, f.db.DeckCount(), "failed create leaves no deck behind")
}

func TestGetOrCreateDecks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	existing, err := f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "B", nil)
	require.NoError(t, err)

	decks, err := f.decks.GetOrCreateDecks(ctx, f.user.ID, f.subject.ID, []string{"C", "B", " ", "A", "C"})
	require.NoError(t, err)
	require.Len(t, decks, 3)
	assert.Equal(t, "C", decks[0].Name)
	assert.Equal(t, existing.ID, decks[1].ID)
	assert.Equal(t, "A", decks[2].Name)
	assert.Equal(t, 3, f.db.DeckCount())

	empty, err := f.decks.GetOrCreateDecks(ctx, f.user.ID, f.subject.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListAndGetDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.newCard(t, f.subject, "1", "one", "Numbers")
	c2 := f.newCard(t, f.subject, "2", "two", "Numbers")
	f.newCard(t, f.subject, "x", "y", "Letters")

	summaries, err := f.decks.ListDecks(ctx, f.user.ID, f.subject.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Letters", summaries[0].Name)
	assert.Equal(t, 2, summaries[1].CardCount)

	details, err := f.decks.GetDeck(ctx, f.user.ID, c1.Decks[0].ID)
	require.NoError(t, err)
	require.Len(t, details.Cards, 2)
	assert.Equal(t, c1.ID, details.Cards[0].ID)
	assert.Equal(t, c2.ID, details.Cards[1].ID)

	mallory := f.newUser(t, "mallory")
	_, err = f.decks.GetDeck(ctx, mallory.ID, c1.Decks[0].ID)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	_, err = f.decks.ListDecks(ctx, mallory.ID, f.subject.ID)
	assert.ErrorIs(t, err, store.ErrSubjectNotFound)
}

func TestRenameDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "A", nil)
	require.NoError(t, err)
	_, err = f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "B", nil)
	require.NoError(t, err)

	renamed, err := f.decks.RenameDeck(ctx, f.user.ID, a.ID, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", renamed.Name)

	_, err = f.decks.RenameDeck(ctx, f.user.ID, a.ID, "B")
	assert.ErrorIs(t, err, store.ErrDeckNameExists)

	_, err = f.decks.RenameDeck(ctx, f.user.ID, a.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteDeckDetachesCards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	card := f.newCard(t, f.subject, "q", "a", "Doomed", "Kept")

	var doomed uuid.UUID
	for _, d := range card.Decks {
		if d.Name == "Doomed" {
			doomed = d.ID
		}
	}

	require.NoError(t, f.decks.DeleteDeck(ctx, f.user.ID, doomed))
	got, err := f.cards.GetCard(ctx, f.user.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept"}, deckNames(got.Decks))
	assert.Equal(t, 1, f.db.DeckCount())

	assert.ErrorIs(t, f.decks.DeleteDeck(ctx, f.user.ID, doomed), store.ErrDeckNotFound)
}

func TestAddDeckToCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("links every card", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c1 := f.newCard(t, f.subject, "1", "one")
		c2 := f.newCard(t, f.subject, "2", "two")
		deck, err := f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "Numbers", nil)
		require.NoError(t, err)

		require.NoError(t, f.decks.AddDeckToCards(ctx, f.user.ID, deck.ID, []uuid.UUID{c1.ID, c2.ID}))
		require.NoError(t, f.decks.AddDeckToCards(ctx, f.user.ID, deck.ID, []uuid.UUID{c1.ID}), "re-adding is a no-op")
		assert.Equal(t, 2, f.db.MembershipCount())
	})

	t.Run("card from another subject fails the whole batch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		other := f.newSubject(t, f.user.ID, "Math")
		local := f.newCard(t, f.subject, "1", "one")
		foreign := f.newCard(t, other, "2", "two")
		deck, err := f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "Mixed", nil)
		require.NoError(t, err)

		err = f.decks.AddDeckToCards(ctx, f.user.ID, deck.ID, []uuid.UUID{local.ID, foreign.ID})
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrCrossSubject)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, f.db.MembershipCount(), "no card is linked")
	})

	t.Run("missing cards are listed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c1 := f.newCard(t, f.subject, "1", "one")
		deck, err := f.decks.CreateDeck(ctx, f.user.ID, f.subject.ID, "D", nil)
		require.NoError(t, err)
		missing := uuid.New()

		err = f.decks.AddDeckToCards(ctx, f.user.ID, deck.ID, []uuid.UUID{c1.ID, missing})
		var nf *service.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []uuid.UUID{missing}, nf.IDs)
		assert.Zero(t, f.db.MembershipCount())
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		err := f.decks.AddDeckToCards(ctx, f.user.ID, uuid.New(), []uuid.UUID{uuid.Nil})
		assert.ErrorIs(t, err, service.ErrNoCardIDs)
	})
}

func TestRemoveDeckFromCards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	member := f.newCard(t, f.subject, "1", "one", "Deck")
	outsider := f.newCard(t, f.subject, "2", "two")
	deckID := member.Decks[0].ID

	err := f.decks.RemoveDeckFromCards(ctx, f.user.ID, deckID, []uuid.UUID{member.ID, outsider.ID})
	require.NoError(t, err)
	assert.False(t, f.db.IsMember(member.ID, deckID))
	assert.True(t, f.logs.HasMessage(slog.LevelInfo, "card is not in deck, skipping"))

	require.NoError(t, f.decks.RemoveDeckFromCards(ctx, f.user.ID, deckID, []uuid.UUID{outsider.ID}))

	t.Run("card from another subject fails the whole batch", func(t *testing.T) {
		linked := f.newCard(t, f.subject, "3", "three", "Deck")
		foreign := f.newCard(t, f.newSubject(t, f.user.ID, "Math"), "4", "four")

		err := f.decks.RemoveDeckFromCards(ctx, f.user.ID, deckID, []uuid.UUID{linked.ID, foreign.ID})
		assert.ErrorIs(t, err, service.ErrCrossSubject)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.True(t, f.db.IsMember(linked.ID, deckID), "member stays linked")
	})
}
