package export

import (
	"context"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

var _ ExportService = (*exportServiceImpl)(nil)

type exportServiceImpl struct {
	subjects store.SubjectStore
	decks    store.DeckStore
	cards    store.CardStore
	logger   *slog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(
	subjects store.SubjectStore,
	decks store.DeckStore,
	cards store.CardStore,
	logger *slog.Logger,
) (ExportService, error) {
	if subjects == nil || decks == nil || cards == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &exportServiceImpl{
		subjects: subjects,
		decks:    decks,
		cards:    cards,
		logger:   logger.With(slog.String("component", "export_service")),
	}, nil
}

// ExportSubject implements ExportService.ExportSubject
func (s *exportServiceImpl) ExportSubject(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	format Format,
) (*File, error) {
	subject, err := service.OwnedSubject(ctx, s.subjects, userID, subjectID)
	if err != nil {
		return nil, service.NewServiceError("export_subject", "failed to retrieve subject", err)
	}
	rows, err := s.cards.ExportRowsBySubject(ctx, subjectID)
	if err != nil {
		return nil, service.NewServiceError("export_subject", "failed to load cards", err)
	}
	return s.render(ctx, "export_subject", FileName(SourceSubject, subject.Name, format), rows, format)
}

// ExportDeck implements ExportService.ExportDeck
func (s *exportServiceImpl) ExportDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	format Format,
) (*File, error) {
	deck, err := service.OwnedDeck(ctx, s.decks, userID, deckID)
	if err != nil {
		return nil, service.NewServiceError("export_deck", "failed to retrieve deck", err)
	}
	rows, err := s.cards.ExportRowsByDeck(ctx, deckID)
	if err != nil {
		return nil, service.NewServiceError("export_deck", "failed to load cards", err)
	}

	// The deck query joins only this deck, but the column must never list
	// other decks even if a store returns wider rows.
	filtered := rows[:0:0]
	for _, r := range rows {
		if r.DeckName == nil || *r.DeckName == deck.Name {
			filtered = append(filtered, r)
		}
	}
	return s.render(ctx, "export_deck", FileName(SourceDeck, deck.Name, format), filtered, format)
}

func (s *exportServiceImpl) render(
	ctx context.Context,
	op, name string,
	rows []domain.CardDeckRow,
	format Format,
) (*File, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	records := GroupRows(rows)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = WriteCSV(records)
	case FormatXLSX:
		data, err = WriteXLSX(records)
	default:
		err = service.ErrUnsupportedFormat
	}
	if err != nil {
		log.Error("failed to render export",
			slog.String("error", err.Error()),
			slog.String("format", string(format)))
		return nil, service.NewServiceError(op, "failed to render export", err)
	}

	log.Info("exported cards",
		slog.String("file", name),
		slog.Int("records", len(records)))
	return &File{
		Name:        name,
		ContentType: format.ContentType(),
		Data:        data,
		Records:     len(records),
	}, nil
}
