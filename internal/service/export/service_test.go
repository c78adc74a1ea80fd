package export_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/service/export"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/flashdeck/flashcards-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func TestGroupRows(t *testing.T) {
	t.Parallel()
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name string
		rows []domain.CardDeckRow
		want []export.Record
	}{
		{
			name: "empty",
			rows: nil,
			want: []export.Record{},
		},
		{
			name: "card without deck",
			rows: []domain.CardDeckRow{{CardID: a, Front: "f", Back: "b", HintFront: strPtr("h")}},
			want: []export.Record{{Front: "f", Back: "b", HintFront: "h", Decks: []string{}}},
		},
		{
			name: "rows merge by card with distinct deck names",
			rows: []domain.CardDeckRow{
				{CardID: a, Front: "1", Back: "one", DeckName: strPtr("Numbers")},
				{CardID: b, Front: "2", Back: "two", DeckName: strPtr("Numbers")},
				{CardID: a, Front: "1", Back: "one", DeckName: strPtr("Basics")},
				{CardID: a, Front: "1", Back: "one", DeckName: strPtr("Numbers")},
			},
			want: []export.Record{
				{Front: "1", Back: "one", Decks: []string{"Numbers", "Basics"}},
				{Front: "2", Back: "two", Decks: []string{"Numbers"}},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, export.GroupRows(tc.rows))
		})
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "subject_Spanish_verbs.csv", export.FileName(export.SourceSubject, "Spanish verbs", export.FormatCSV))
	assert.Equal(t, "deck_a_b.v1.xlsx", export.FileName(export.SourceDeck, "a/b.v1", export.FormatXLSX))
	assert.Equal(t, "deck_export.csv", export.FileName(export.SourceDeck, "日本", export.FormatCSV))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type fixture struct {
	db      *testutils.MemDB
	user    *domain.User
	subject *domain.Subject
	svc     export.ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutils.NewMemDB()

	user, err := domain.NewUser("test|alice", "alice")
	require.NoError(t, err)
	require.NoError(t, db.Users().Create(ctx, user))
	subject, err := domain.NewSubject(user.ID, domain.SubjectSettings{Name: "Spanish"})
	require.NoError(t, err)
	require.NoError(t, db.Subjects().Create(ctx, subject))

	svc, err := export.NewExportService(db.Subjects(), db.Decks(), db.Cards(), nil)
	require.NoError(t, err)
	return &fixture{db: db, user: user, subject: subject, svc: svc}
}

func (f *fixture) addCard(t *testing.T, front, back string, hintFront *string, decks ...*domain.Deck) {
	t.Helper()
	ctx := context.Background()
	card, err := domain.NewCard(f.user.ID, f.subject.ID, domain.CardContent{Front: front, Back: back, HintFront: hintFront})
	require.NoError(t, err)
	require.NoError(t, f.db.Cards().Create(ctx, card))
	for _, d := range decks {
		require.NoError(t, f.db.Decks().AddCards(ctx, d.ID, []uuid.UUID{card.ID}))
	}
}

func (f *fixture) addDeck(t *testing.T, name string) *domain.Deck {
	t.Helper()
	d, err := domain.NewDeck(f.user.ID, f.subject.ID, name)
	require.NoError(t, err)
	require.NoError(t, f.db.Decks().Create(context.Background(), d))
	return d
}

func TestExportSubjectCSV(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d1 := f.addDeck(t, "Deck 1")
	d2 := f.addDeck(t, "Deck 2")
	f.addCard(t, "Front 1", "Back 1", nil, d1, d2)
	f.addCard(t, "Front, 2", "Back 2", strPtr("say \"hi\""))

	file, err := f.svc.ExportSubject(context.Background(), f.user.ID, f.subject.ID, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "subject_Spanish.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 2, file.Records)

	want := "front,back,hint_front,hint_back,decks\n" +
		"Front 1,Back 1,,,Deck 1;Deck 2\n" +
		"\"Front, 2\",Back 2,\"say \"\"hi\"\"\",,\n"
	assert.Equal(t, want, string(file.Data))
}

func TestExportDeckListsOnlyThatDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d1 := f.addDeck(t, "Deck 1")
	d2 := f.addDeck(t, "Deck 2")
	f.addCard(t, "Front 1", "Back 1", nil, d1, d2)
	f.addCard(t, "Front 2", "Back 2", nil, d2)

	file, err := f.svc.ExportDeck(context.Background(), f.user.ID, d1.ID, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "deck_Deck_1.csv", file.Name)
	assert.Equal(t, "front,back,hint_front,hint_back,decks\nFront 1,Back 1,,,Deck 1\n", string(file.Data))
}

func TestExportXLSX(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := f.addDeck(t, "Deck 1")
	f.addCard(t, "Front 1", "Back 1", strPtr("hint"), d)

	file, err := f.svc.ExportSubject(context.Background(), f.user.ID, f.subject.ID, export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "subject_Spanish.xlsx", file.Name)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, []string{"Front 1", "Back 1", "hint", "", "Deck 1"}, rows[1])
}

func TestExportNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	d := f.addDeck(t, "Deck 1")

	_, err := f.svc.ExportSubject(ctx, f.user.ID, uuid.New(), export.FormatCSV)
	assert.ErrorIs(t, err, store.ErrSubjectNotFound)
	assert.True(t, service.IsNotFound(err))

	_, err = f.svc.ExportDeck(ctx, f.user.ID, uuid.New(), export.FormatCSV)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	_, err = f.svc.ExportDeck(ctx, uuid.New(), d.ID, export.FormatCSV)
	assert.ErrorIs(t, err, store.ErrNotFound, "another user's deck is reported missing")
}
