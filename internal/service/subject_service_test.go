package service_test

import (
	"context"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubjectServiceRequiresStore(t *testing.T) {
	t.Parallel()
	_, err := service.NewSubjectService(nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubjectLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	second := f.newSubject(t, f.user.ID, "Math")
	_, err := f.subjects.CreateSubject(ctx, f.user.ID, domain.SubjectSettings{Name: "Math"})
	assert.ErrorIs(t, err, store.ErrSubjectNameExists)

	list, err := f.subjects.ListSubjects(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	updated, err := f.subjects.UpdateSubject(ctx, f.user.ID, second.ID, domain.SubjectSettings{
		Name:       "Maths",
		FrontLabel: strPtr("Question"),
		CardOrder:  domain.OrderRandom,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maths", updated.Name)
	require.NotNil(t, updated.FrontLabel)
	assert.Equal(t, "Question", *updated.FrontLabel)

	got, err := f.subjects.GetSubject(ctx, f.user.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderRandom, got.CardOrder)

	_, err = f.subjects.UpdateSubject(ctx, f.user.ID, second.ID, domain.SubjectSettings{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubjectOwnership(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	mallory := f.newUser(t, "mallory")

	_, err := f.subjects.GetSubject(ctx, mallory.ID, f.subject.ID)
	assert.ErrorIs(t, err, store.ErrSubjectNotFound)
	assert.True(t, service.IsNotFound(err))

	err = f.subjects.DeleteSubject(ctx, mallory.ID, f.subject.ID)
	assert.ErrorIs(t, err, store.ErrSubjectNotFound)

	list, err := f.subjects.ListSubjects(ctx, mallory.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteSubjectCascades(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	other := f.newSubject(t, f.user.ID, "Other")
	card := f.newCard(t, f.subject, "q", "a", "Deck")
	kept := f.newCard(t, other, "q", "a", "Deck")
	_, err := f.ratings.RecordRating(ctx, f.user.ID, card.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.subjects.DeleteSubject(ctx, f.user.ID, f.subject.ID))

	assert.Equal(t, 1, f.db.CardCount())
	assert.Equal(t, 1, f.db.DeckCount())
	assert.Equal(t, 1, f.db.MembershipCount())

	_, err = f.cards.GetCard(ctx, f.user.ID, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
	_, err = f.cards.GetCard(ctx, f.user.ID, kept.ID)
	assert.NoError(t, err)
}
