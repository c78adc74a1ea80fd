package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardStore_CreateManyAndFindExistingKeys(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	withTx(t, db, func(tx *sql.Tx) {
		f := createFixture(t, ctx, tx)
		cards := NewPostgresCardStore(tx, nil)

		c1 := f.card(t, "hola", "hello")
		c2 := f.card(t, "adios", "bye")
		require.NoError(t, cards.CreateMany(ctx, []*domain.Card{c1, c2}))

		existing, err := cards.FindExistingKeys(ctx, f.subject.ID, []domain.CardKey{
			{Front: "hola", Back: "hello"},
			{Front: "hola", Back: "hi"},
		})
		require.NoError(t, err)
		assert.Len(t, existing, 1)
		assert.Contains(t, existing, domain.CardKey{Front: "hola", Back: "hello"})

		listed, err := cards.ListBySubject(ctx, f.subject.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, c1.ID, listed[0].ID, "insertion order is preserved")

		dup := f.card(t, "hola", "hello")
		assert.ErrorIs(t, cards.Create(ctx, dup), store.ErrCardExists)
	})
}

func TestCardStore_UpdateAndDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	withTx(t, db, func(tx *sql.Tx) {
		f := createFixture(t, ctx, tx)
		cards := NewPostgresCardStore(tx, nil)

		card := f.card(t, "q", "a")
		require.NoError(t, cards.Create(ctx, card))

		hint := "think"
		require.NoError(t, card.Update(domain.CardContent{Front: "q2", Back: "a2", HintFront: &hint}))
		require.NoError(t, cards.Update(ctx, card))

		got, err := cards.GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "q2", got.Front)
		assert.Equal(t, "think", domain.StringValue(got.HintFront))
		assert.Nil(t, got.HintBack)

		n, err := cards.DeleteMany(ctx, []uuid.UUID{card.ID, uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = cards.GetByID(ctx, card.ID)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardStore_ExportRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	withTx(t, db, func(tx *sql.Tx) {
		f := createFixture(t, ctx, tx)
		cards := NewPostgresCardStore(tx, nil)
		decks := NewPostgresDeckStore(tx, nil)

		d1 := f.deck(t, "Deck 1")
		d2 := f.deck(t, "Deck 2")
		require.NoError(t, decks.Create(ctx, d1))
		require.NoError(t, decks.Create(ctx, d2))

		shared := f.card(t, "Front 1", "Back 1")
		loose := f.card(t, "Front 2", "Back 2")
		require.NoError(t, cards.CreateMany(ctx, []*domain.Card{shared, loose}))
		require.NoError(t, decks.AddCards(ctx, d1.ID, []uuid.UUID{shared.ID}))
		require.NoError(t, decks.AddCards(ctx, d2.ID, []uuid.UUID{shared.ID}))

		rows, err := cards.ExportRowsBySubject(ctx, f.subject.ID)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Deck 1", domain.StringValue(rows[0].DeckName))
		assert.Equal(t, "Deck 2", domain.StringValue(rows[1].DeckName))
		assert.Equal(t, loose.ID, rows[2].CardID)
		assert.Nil(t, rows[2].DeckName)

		rows, err = cards.ExportRowsByDeck(ctx, d1.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, shared.ID, rows[0].CardID)
		assert.Equal(t, "Deck 1", domain.StringValue(rows[0].DeckName))
	})
}
