package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fixture wires every service to one in-memory database holding a user and
// a subject.
type fixture struct {
	db       *testutils.MemDB
	logs     *testutils.TestSlogHandler
	user     *domain.User
	subject  *domain.Subject
	cards    service.CardService
	decks    service.DeckService
	subjects service.SubjectService
	ratings  service.RatingService
	stats    service.StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutils.NewMemDB()
	logs := testutils.NewTestSlogHandler()
	log := slog.New(logs)

	f := &fixture{db: db, logs: logs}
	var err error
	f.cards, err = service.NewCardService(db.Transactor(), db.Cards(), db.Decks(), db.Subjects(), db.Histories(), log)
	require.NoError(t, err)
	f.decks, err = service.NewDeckService(db.Transactor(), db.Decks(), db.Cards(), db.Subjects(), log)
	require.NoError(t, err)
	f.subjects, err = service.NewSubjectService(db.Subjects(), log)
	require.NoError(t, err)
	f.ratings, err = service.NewRatingService(db.Cards(), db.Histories(), log)
	require.NoError(t, err)
	f.stats, err = service.NewStatsService(db.Stats(), db.Cards(), db.Decks(), db.Histories(), log)
	require.NoError(t, err)

	f.user = f.newUser(t, "alice")
	f.subject = f.newSubject(t, f.user.ID, "Spanish")
	return f
}

func (f *fixture) newUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := domain.NewUser("test|"+name, name)
	require.NoError(t, err)
	require.NoError(t, f.db.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) newSubject(t *testing.T, userID uuid.UUID, name string) *domain.Subject {
	t.Helper()
	s, err := f.subjects.CreateSubject(context.Background(), userID, domain.SubjectSettings{Name: name})
	require.NoError(t, err)
	return s
}

func (f *fixture) newCard(t *testing.T, subject *domain.Subject, front, back string, decks ...string) *domain.CardDetails {
	t.Helper()
	res, err := f.cards.CreateCard(context.Background(), subject.UserID, subject.ID, service.CardInput{
		Front:     front,
		Back:      back,
		DeckNames: decks,
	})
	require.NoError(t, err)
	require.False(t, res.AlreadyExisted)
	return res.Card
}

func deckNames(decks []domain.Deck) []string {
	names := make([]string, len(decks))
	for i, d := range decks {
		names[i] = d.Name
	}
	return names
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
