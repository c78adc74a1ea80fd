package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

const subjectColumns = `id, user_id, name, front_label, back_label, default_side, display_deck_names, card_order, created_at, updated_at`

var subjectConstraintErrors = map[string]error{
	constraintSubjectsUserName: store.ErrSubjectNameExists,
	constraintSubjectsUserFK:   store.ErrUserNotFound,
}

// PostgresSubjectStore implements the store.SubjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubjectStore creates a new PostgreSQL implementation of the SubjectStore interface.
func NewPostgresSubjectStore(db store.DBTX, logger *slog.Logger) *PostgresSubjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresSubjectStore{db: db, logger: componentLogger(logger, "subject_store")}
}

// Ensure PostgresSubjectStore implements store.SubjectStore interface
var _ store.SubjectStore = (*PostgresSubjectStore)(nil)

// WithTx implements store.SubjectStore.WithTx
func (s *PostgresSubjectStore) WithTx(tx *sql.Tx) store.SubjectStore {
	return &PostgresSubjectStore{db: tx, logger: s.logger}
}

func scanSubject(row rowScanner) (*domain.Subject, error) {
	var sub domain.Subject
	var side, order string
	if err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&sub.FrontLabel,
		&sub.BackLabel,
		&side,
		&sub.DisplayDeckNames,
		&order,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sub.DefaultSide = domain.DisplaySide(side)
	sub.CardOrder = domain.CardOrder(order)
	return &sub, nil
}

// Create implements store.SubjectStore.Create
func (s *PostgresSubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subject.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO subjects (` + subjectColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query,
		subject.ID,
		subject.UserID,
		subject.Name,
		subject.FrontLabel,
		subject.BackLabel,
		string(subject.DefaultSide),
		subject.DisplayDeckNames,
		string(subject.CardOrder),
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		log.Warn("failed to create subject",
			slog.String("error", err.Error()),
			slog.String("user_id", subject.UserID.String()))
		return mapConstraintError(err, subjectConstraintErrors)
	}

	log.Info("subject created",
		slog.String("subject_id", subject.ID.String()),
		slog.String("user_id", subject.UserID.String()))
	return nil
}

// GetByID implements store.SubjectStore.GetByID
func (s *PostgresSubjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1`
	sub, err := scanSubject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSubjectNotFound
		}
		return nil, MapError(err)
	}
	return sub, nil
}

// ListByUser implements store.SubjectStore.ListByUser
func (s *PostgresSubjectStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = $1 ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []*domain.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, MapError(err)
		}
		subjects = append(subjects, sub)
	}
	return subjects, MapError(rows.Err())
}

// Update implements store.SubjectStore.Update
func (s *PostgresSubjectStore) Update(ctx context.Context, subject *domain.Subject) error {
	if err := subject.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE subjects
		SET name = $2, front_label = $3, back_label = $4, default_side = $5,
		    display_deck_names = $6, card_order = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		subject.ID,
		subject.Name,
		subject.FrontLabel,
		subject.BackLabel,
		string(subject.DefaultSide),
		subject.DisplayDeckNames,
		string(subject.CardOrder),
		subject.UpdatedAt,
	)
	if err != nil {
		return mapConstraintError(err, subjectConstraintErrors)
	}
	return CheckRowsAffected(result, store.ErrSubjectNotFound)
}

// Delete implements store.SubjectStore.Delete
func (s *PostgresSubjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSubjectNotFound)
}
