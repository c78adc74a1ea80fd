package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"
)

// Constraint names declared in the migrations. Errors are classified by
// constraint so that, for example, a rating for a deleted card is reported
// as a missing card rather than a generic integrity failure.
const (
	constraintUsersUsername     = "users_username_key"
	constraintUsersAuthSubject  = "users_auth_subject_key"
	constraintSubjectsUserName  = "subjects_user_id_name_key"
	constraintSubjectsUserFK    = "subjects_user_id_fkey"
	constraintDecksSubjectName  = "decks_subject_id_name_key"
	constraintDecksSubjectFK    = "decks_subject_id_fkey"
	constraintCardsSubjectKey   = "cards_subject_id_front_back_key"
	constraintCardsSubjectFK    = "cards_subject_id_fkey"
	constraintCardDecksCardFK   = "card_decks_card_id_fkey"
	constraintCardDecksDeckFK   = "card_decks_deck_id_fkey"
	constraintCardHistoryCardFK = "card_history_card_id_fkey"
	constraintCardHistoryUserFK = "card_history_user_id_fkey"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case foreignKeyViolationCode:
			return fmt.Errorf(
				"%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		}
	}

	return err
}

// mapConstraintError returns the sentinel registered for the violated
// constraint, falling back to MapError.
func mapConstraintError(err error, byConstraint map[string]error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := byConstraint[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	return MapError(err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected, it returns notFound (or store.ErrNotFound when nil).
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}
