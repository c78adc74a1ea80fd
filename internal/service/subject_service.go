package service

import (
	"context"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// SubjectService manages a user's subjects.
type SubjectService interface {
	ListSubjects(ctx context.Context, userID uuid.UUID) ([]*domain.Subject, error)
	GetSubject(ctx context.Context, userID, subjectID uuid.UUID) (*domain.Subject, error)
	CreateSubject(ctx context.Context, userID uuid.UUID, settings domain.SubjectSettings) (*domain.Subject, error)
	UpdateSubject(ctx context.Context, userID, subjectID uuid.UUID, settings domain.SubjectSettings) (*domain.Subject, error)

	// DeleteSubject deletes the subject with its decks and cards.
	DeleteSubject(ctx context.Context, userID, subjectID uuid.UUID) error
}

type subjectServiceImpl struct {
	subjects store.SubjectStore
	logger   *slog.Logger
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(subjects store.SubjectStore, logger *slog.Logger) (SubjectService, error) {
	if subjects == nil {
		return nil, domain.NewValidationError("subjects", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &subjectServiceImpl{
		subjects: subjects,
		logger:   logger.With(slog.String("component", "subject_service")),
	}, nil
}

func (s *subjectServiceImpl) ListSubjects(ctx context.Context, userID uuid.UUID) ([]*domain.Subject, error) {
	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_subjects", "failed to list subjects", err)
	}
	if subjects == nil {
		subjects = []*domain.Subject{}
	}
	return subjects, nil
}

func (s *subjectServiceImpl) GetSubject(ctx context.Context, userID, subjectID uuid.UUID) (*domain.Subject, error) {
	subject, err := OwnedSubject(ctx, s.subjects, userID, subjectID)
	if err != nil {
		return nil, NewServiceError("get_subject", "failed to retrieve subject", err)
	}
	return subject, nil
}

func (s *subjectServiceImpl) CreateSubject(
	ctx context.Context,
	userID uuid.UUID,
	settings domain.SubjectSettings,
) (*domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	subject, err := domain.NewSubject(userID, settings)
	if err != nil {
		return nil, NewServiceError("create_subject", "invalid subject", err)
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		log.Debug("failed to create subject", slog.String("error", err.Error()))
		return nil, NewServiceError("create_subject", "failed to save subject", err)
	}

	log.Info("created subject", slog.String("subject_id", subject.ID.String()))
	return subject, nil
}

func (s *subjectServiceImpl) UpdateSubject(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	settings domain.SubjectSettings,
) (*domain.Subject, error) {
	subject, err := OwnedSubject(ctx, s.subjects, userID, subjectID)
	if err != nil {
		return nil, NewServiceError("update_subject", "failed to retrieve subject", err)
	}
	if err := subject.Update(settings); err != nil {
		return nil, NewServiceError("update_subject", "invalid subject", err)
	}
	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, NewServiceError("update_subject", "failed to save subject", err)
	}
	return subject, nil
}

func (s *subjectServiceImpl) DeleteSubject(ctx context.Context, userID, subjectID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := OwnedSubject(ctx, s.subjects, userID, subjectID); err != nil {
		return NewServiceError("delete_subject", "failed to retrieve subject", err)
	}
	if err := s.subjects.Delete(ctx, subjectID); err != nil {
		return NewServiceError("delete_subject", "failed to delete subject", err)
	}

	log.Info("deleted subject", slog.String("subject_id", subjectID.String()))
	return nil
}
