package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// testDB opens the database named by DATABASE_URL and applies migrations
// once per test binary. Tests are skipped when the variable is unset.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = Migrate(context.Background(), db, "up", nil)
	})
	require.NoError(t, migrateErr)
	return db
}

// withTx runs fn in a transaction that is always rolled back.
func withTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	fn(tx)
}

type fixture struct {
	user    *domain.User
	subject *domain.Subject
}

func createFixture(t *testing.T, ctx context.Context, db store.DBTX) fixture {
	t.Helper()

	user, err := domain.NewUser("test|"+uuid.NewString(), "user-"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, NewPostgresUserStore(db, nil).Create(ctx, user))

	subject, err := domain.NewSubject(user.ID, domain.SubjectSettings{Name: "Subject " + uuid.NewString()[:8]})
	require.NoError(t, err)
	require.NoError(t, NewPostgresSubjectStore(db, nil).Create(ctx, subject))

	return fixture{user: user, subject: subject}
}

func (f fixture) card(t *testing.T, front, back string) *domain.Card {
	t.Helper()
	c, err := domain.NewCard(f.user.ID, f.subject.ID, domain.CardContent{Front: front, Back: back})
	require.NoError(t, err)
	return c
}

func (f fixture) deck(t *testing.T, name string) *domain.Deck {
	t.Helper()
	d, err := domain.NewDeck(f.user.ID, f.subject.ID, name)
	require.NoError(t, err)
	return d
}
