package upload

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// Skipped is a row that was not imported.
type Skipped struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result partitions the valid rows of an upload. Both lists follow the input
// order.
type Result struct {
	Saved      []*domain.Card `json:"saved"`
	Duplicates []Row          `json:"duplicates"`
	Skipped    []Skipped      `json:"skipped"`
}

// UploadService imports CSV files.
type UploadService interface {
	// Upload imports the CSV in r into the subject. Rows whose front and back
	// already exist in the subject, or appear earlier in the file, are
	// reported as duplicates. New cards are saved in one transaction, so a
	// failure at any point persists nothing.
	Upload(ctx context.Context, userID, subjectID uuid.UUID, r io.Reader) (*Result, error)
}

var _ UploadService = (*uploadServiceImpl)(nil)

type uploadServiceImpl struct {
	tx       store.Transactor
	subjects store.SubjectStore
	decks    store.DeckStore
	cards    store.CardStore
	logger   *slog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(
	tx store.Transactor,
	subjects store.SubjectStore,
	decks store.DeckStore,
	cards store.CardStore,
	logger *slog.Logger,
) (UploadService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if subjects == nil || decks == nil || cards == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &uploadServiceImpl{
		tx:       tx,
		subjects: subjects,
		decks:    decks,
		cards:    cards,
		logger:   logger.With(slog.String("component", "upload_service")),
	}, nil
}

// candidate is a valid row together with the card built from it.
type candidate struct {
	row  Row
	card *domain.Card
}

// Upload implements UploadService.Upload
func (s *uploadServiceImpl) Upload(ctx context.Context, userID, subjectID uuid.UUID, r io.Reader) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("subject_id", subjectID.String()))

	if _, err := service.OwnedSubject(ctx, s.subjects, userID, subjectID); err != nil {
		return nil, service.NewServiceError("upload_cards", "failed to retrieve subject", err)
	}

	rows, err := Parse(r)
	if err != nil {
		log.Warn("failed to parse upload", slog.String("error", err.Error()))
		return nil, service.NewServiceError("upload_cards", "failed to read upload", err)
	}

	result := &Result{
		Saved:      []*domain.Card{},
		Duplicates: []Row{},
		Skipped:    []Skipped{},
	}
	valid := make([]candidate, 0, len(rows))
	for _, row := range rows {
		if row.Front == "" || row.Back == "" {
			log.Warn("skipping row with blank front or back", slog.Int("line", row.Line))
			result.Skipped = append(result.Skipped, Skipped{Line: row.Line, Reason: "front and back are required"})
			continue
		}
		card, err := domain.NewCard(userID, subjectID, row.Content())
		if err == nil {
			err = checkDeckNames(row.Decks)
		}
		if err != nil {
			log.Warn("skipping invalid row",
				slog.Int("line", row.Line),
				slog.String("error", err.Error()))
			result.Skipped = append(result.Skipped, Skipped{Line: row.Line, Reason: err.Error()})
			continue
		}
		valid = append(valid, candidate{row: row, card: card})
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		decks := s.decks.WithTx(tx)

		subject, err := service.OwnedSubject(ctx, s.subjects.WithTx(tx), userID, subjectID)
		if err != nil {
			return err
		}

		keys := make([]domain.CardKey, len(valid))
		for i, c := range valid {
			keys[i] = c.card.Key()
		}
		existing, err := cards.FindExistingKeys(ctx, subjectID, keys)
		if err != nil {
			return err
		}

		var fresh []candidate
		seen := make(map[domain.CardKey]struct{}, len(valid))
		for _, c := range valid {
			key := c.card.Key()
			_, inStore := existing[key]
			_, inFile := seen[key]
			if inStore || inFile {
				result.Duplicates = append(result.Duplicates, c.row)
				continue
			}
			seen[key] = struct{}{}
			fresh = append(fresh, c)
		}
		if len(fresh) == 0 {
			return nil
		}

		saved := make([]*domain.Card, len(fresh))
		for i, c := range fresh {
			saved[i] = c.card
		}
		if err := cards.CreateMany(ctx, saved); err != nil {
			return err
		}
		if err := linkDecks(ctx, decks, subject, fresh); err != nil {
			return err
		}
		result.Saved = saved
		return nil
	})
	if err != nil {
		log.Error("failed to import cards", slog.String("error", err.Error()))
		return nil, service.NewServiceError("upload_cards", "failed to import cards", err)
	}

	log.Info("imported cards",
		slog.Int("saved", len(result.Saved)),
		slog.Int("duplicates", len(result.Duplicates)),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

func checkDeckNames(names []string) error {
	for _, name := range names {
		if utf8.RuneCountInString(name) > domain.MaxDeckNameLength {
			return domain.NewValidationError("decks", fmt.Sprintf("name %q is too long", name), domain.ErrContentTooLong)
		}
	}
	return nil
}

// linkDecks resolves every deck named by the new rows and links the cards.
func linkDecks(ctx context.Context, decks store.DeckStore, subject *domain.Subject, fresh []candidate) error {
	var names []string
	for _, c := range fresh {
		names = append(names, c.row.Decks...)
	}
	resolved, err := service.ResolveDecks(ctx, decks, subject, names)
	if err != nil || len(resolved) == 0 {
		return err
	}

	byName := make(map[string]*domain.Deck, len(resolved))
	for _, d := range resolved {
		byName[d.Name] = d
	}
	members := make(map[uuid.UUID][]uuid.UUID, len(resolved))
	for _, c := range fresh {
		for _, name := range c.row.Decks {
			d := byName[name]
			members[d.ID] = append(members[d.ID], c.card.ID)
		}
	}
	for _, d := range resolved {
		if err := decks.AddCards(ctx, d.ID, members[d.ID]); err != nil {
			return err
		}
	}
	return nil
}
