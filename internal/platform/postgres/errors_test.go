package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, wantIs: store.ErrDuplicate},
		{name: "foreign key violation", err: &pgconn.PgError{Code: foreignKeyViolationCode}, wantIs: store.ErrInvalidEntity},
		{name: "check violation", err: &pgconn.PgError{Code: checkViolationCode}, wantIs: store.ErrInvalidEntity},
		{name: "not null violation", err: &pgconn.PgError{Code: notNullViolationCode}, wantIs: store.ErrInvalidEntity},
		{
			name:   "wrapped unique violation",
			err:    fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}),
			wantIs: store.ErrDuplicate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tc.err)
			if tc.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.wantIs)
		})
	}

	other := errors.New("connection reset")
	assert.Same(t, other, MapError(other))
}

func TestMapConstraintError(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: constraintCardHistoryCardFK}
	err := mapConstraintError(fk, historyConstraintErrors)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	dup := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraintDecksSubjectName}
	assert.ErrorIs(t, mapConstraintError(dup, deckConstraintErrors), store.ErrDeckNameExists)

	unknown := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "something_else"}
	err = mapConstraintError(unknown, deckConstraintErrors)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, store.ErrDeckNameExists)

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(dup))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, store.ErrDeckNotFound))
	assert.ErrorIs(t, CheckRowsAffected(fakeResult{rows: 0}, store.ErrDeckNotFound), store.ErrDeckNotFound)
	assert.ErrorIs(t, CheckRowsAffected(fakeResult{rows: 0}, nil), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(fakeResult{err: errors.New("driver")}, nil))
	assert.Error(t, CheckRowsAffected(nil, nil))
}
