package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// CardInput carries the editable fields of a card plus the names of the
// decks it should belong to.
type CardInput struct {
	Front     string
	Back      string
	HintFront *string
	HintBack  *string

	// DeckNames lists decks by name. Missing decks are created in the
	// card's subject. On update a nil slice leaves memberships untouched.
	DeckNames []string
}

func (in CardInput) content() domain.CardContent {
	return domain.CardContent{
		Front:     in.Front,
		Back:      in.Back,
		HintFront: in.HintFront,
		HintBack:  in.HintBack,
	}
}

// CreateCardResult is the outcome of creating a single card.
type CreateCardResult struct {
	Card *domain.CardDetails

	// AlreadyExisted is true when a card with the same front and back was
	// already in the subject. Card is then the existing card.
	AlreadyExisted bool
}

// CardFilter narrows and orders a card listing.
type CardFilter struct {
	// Rating bounds apply to the caller's average rating. Cards the caller
	// never rated are excluded when either bound is set.
	MinAvgRating *float64
	MaxAvgRating *float64

	// Shuffle returns the cards in random order regardless of the
	// subject's configured card order.
	Shuffle bool
}

func (f CardFilter) matches(h *domain.CardHistory) bool {
	if f.MinAvgRating == nil && f.MaxAvgRating == nil {
		return true
	}
	if h == nil {
		return false
	}
	if f.MinAvgRating != nil && h.AvgRating < *f.MinAvgRating {
		return false
	}
	if f.MaxAvgRating != nil && h.AvgRating > *f.MaxAvgRating {
		return false
	}
	return true
}

// CardService provides card-related operations
type CardService interface {
	// CreateCard creates a card in the subject, or returns the existing card
	// with the same front and back. An existing card is returned unchanged:
	// in.DeckNames is ignored and no deck is created or linked.
	CreateCard(ctx context.Context, userID, subjectID uuid.UUID, in CardInput) (*CreateCardResult, error)

	// CreateCards applies CreateCard to each input in a single transaction.
	// Results follow input order.
	CreateCards(ctx context.Context, userID, subjectID uuid.UUID, inputs []CardInput) ([]CreateCardResult, error)

	// GetCard retrieves a card with its decks and the caller's history.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardDetails, error)

	// ListCards lists the subject's cards.
	ListCards(ctx context.Context, userID, subjectID uuid.UUID, filter CardFilter) ([]*domain.CardDetails, error)

	// UpdateCard replaces a card's content and, when DeckNames is non-nil,
	// its deck memberships.
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, in CardInput) (*domain.CardDetails, error)

	// SetHints replaces both hints of a card. Blank hints are cleared.
	SetHints(ctx context.Context, userID, cardID uuid.UUID, hintFront, hintBack *string) (*domain.CardDetails, error)

	// DeleteCards deletes the cards together with their histories and deck
	// memberships. If any id is unknown nothing is deleted.
	DeleteCards(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	tx        store.Transactor
	cards     store.CardStore
	decks     store.DeckStore
	subjects  store.SubjectStore
	histories store.CardHistoryStore
	logger    *slog.Logger
}

// NewCardService creates a new CardService
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	tx store.Transactor,
	cards store.CardStore,
	decks store.DeckStore,
	subjects store.SubjectStore,
	histories store.CardHistoryStore,
	logger *slog.Logger,
) (CardService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil || decks == nil || subjects == nil || histories == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		tx:        tx,
		cards:     cards,
		decks:     decks,
		subjects:  subjects,
		histories: histories,
		logger:    logger.With(slog.String("component", "card_service")),
	}, nil
}

// createInTx creates one card, or finds the existing card with the same key,
// using stores bound to the current transaction.
func (s *cardServiceImpl) createInTx(
	ctx context.Context,
	cards store.CardStore,
	decks store.DeckStore,
	subject *domain.Subject,
	in CardInput,
) (*domain.Card, bool, error) {
	card, err := domain.NewCard(subject.UserID, subject.ID, in.content())
	if err != nil {
		return nil, false, err
	}

	existing, err := cards.FindByKey(ctx, subject.ID, card.Key())
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, store.ErrCardNotFound) {
		return nil, false, err
	}

	if err := cards.Create(ctx, card); err != nil {
		return nil, false, err
	}

	targets, err := ResolveDecks(ctx, decks, subject, in.DeckNames)
	if err != nil {
		return nil, false, err
	}
	for _, d := range targets {
		if err := decks.AddCards(ctx, d.ID, []uuid.UUID{card.ID}); err != nil {
			return nil, false, err
		}
	}
	return card, false, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	in CardInput,
) (*CreateCardResult, error) {
	results, err := s.create(ctx, "create_card", userID, subjectID, []CardInput{in})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// CreateCards implements CardService.CreateCards
func (s *cardServiceImpl) CreateCards(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	inputs []CardInput,
) ([]CreateCardResult, error) {
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("cards", "must contain at least one card", domain.ErrEmptyContent)
	}
	return s.create(ctx, "create_cards", userID, subjectID, inputs)
}

func (s *cardServiceImpl) create(
	ctx context.Context,
	op string,
	userID, subjectID uuid.UUID,
	inputs []CardInput,
) ([]CreateCardResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created := make([]*domain.Card, len(inputs))
	existed := make([]bool, len(inputs))
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		decks := s.decks.WithTx(tx)

		subject, err := OwnedSubject(ctx, s.subjects.WithTx(tx), userID, subjectID)
		if err != nil {
			return err
		}
		for i, in := range inputs {
			card, found, err := s.createInTx(ctx, cards, decks, subject, in)
			if err != nil {
				return err
			}
			created[i] = card
			existed[i] = found
		}
		return nil
	})
	if err != nil {
		log.Debug("failed to create cards",
			slog.String("error", err.Error()),
			slog.String("subject_id", subjectID.String()))
		return nil, NewServiceError(op, "failed to create card", err)
	}

	details, err := cardDetails(ctx, s.decks, s.histories, userID, created)
	if err != nil {
		return nil, NewServiceError(op, "failed to load card details", err)
	}

	results := make([]CreateCardResult, len(inputs))
	newCount := 0
	for i := range inputs {
		results[i] = CreateCardResult{Card: details[i], AlreadyExisted: existed[i]}
		if !existed[i] {
			newCount++
		}
	}

	log.Info("created cards",
		slog.String("subject_id", subjectID.String()),
		slog.Int("created", newCount),
		slog.Int("existing", len(inputs)-newCount))
	return results, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := OwnedCard(ctx, s.cards, userID, cardID)
	if err != nil {
		log.Debug("failed to retrieve card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewServiceError("get_card", "failed to retrieve card", err)
	}

	details, err := cardDetails(ctx, s.decks, s.histories, userID, []*domain.Card{card})
	if err != nil {
		return nil, NewServiceError("get_card", "failed to load card details", err)
	}
	return details[0], nil
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	filter CardFilter,
) ([]*domain.CardDetails, error) {
	subject, err := OwnedSubject(ctx, s.subjects, userID, subjectID)
	if err != nil {
		return nil, NewServiceError("list_cards", "failed to retrieve subject", err)
	}

	cards, err := s.cards.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, NewServiceError("list_cards", "failed to list cards", err)
	}
	all, err := cardDetails(ctx, s.decks, s.histories, userID, cards)
	if err != nil {
		return nil, NewServiceError("list_cards", "failed to load card details", err)
	}

	out := make([]*domain.CardDetails, 0, len(all))
	for _, c := range all {
		if filter.matches(c.History) {
			out = append(out, c)
		}
	}

	switch {
	case filter.Shuffle || subject.CardOrder == domain.OrderRandom:
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	case subject.CardOrder == domain.OrderNewest:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// UpdateCard implements CardService.UpdateCard
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	in CardInput,
) (*domain.CardDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var card *domain.Card
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		decks := s.decks.WithTx(tx)

		var err error
		card, err = OwnedCard(ctx, cards, userID, cardID)
		if err != nil {
			return err
		}
		if err := card.Update(in.content()); err != nil {
			return err
		}
		other, err := cards.FindByKey(ctx, card.SubjectID, card.Key())
		switch {
		case err == nil && other.ID != card.ID:
			return store.ErrCardExists
		case err != nil && !errors.Is(err, store.ErrCardNotFound):
			return err
		}
		if err := cards.Update(ctx, card); err != nil {
			return err
		}

		if in.DeckNames == nil {
			return nil
		}
		subject, err := s.subjects.WithTx(tx).GetByID(ctx, card.SubjectID)
		if err != nil {
			return err
		}
		return s.replaceDecks(ctx, decks, subject, card.ID, in.DeckNames)
	})
	if err != nil {
		log.Debug("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewServiceError("update_card", "failed to update card", err)
	}

	details, err := cardDetails(ctx, s.decks, s.histories, userID, []*domain.Card{card})
	if err != nil {
		return nil, NewServiceError("update_card", "failed to load card details", err)
	}
	log.Info("updated card", slog.String("card_id", cardID.String()))
	return details[0], nil
}

// replaceDecks makes the card's deck memberships equal to names.
func (s *cardServiceImpl) replaceDecks(
	ctx context.Context,
	decks store.DeckStore,
	subject *domain.Subject,
	cardID uuid.UUID,
	names []string,
) error {
	targets, err := ResolveDecks(ctx, decks, subject, names)
	if err != nil {
		return err
	}
	current, err := decks.ListByCards(ctx, []uuid.UUID{cardID})
	if err != nil {
		return err
	}

	keep := make(map[uuid.UUID]bool, len(targets))
	for _, d := range targets {
		keep[d.ID] = true
	}
	have := make(map[uuid.UUID]bool)
	for _, d := range current[cardID] {
		have[d.ID] = true
		if !keep[d.ID] {
			if _, err := decks.RemoveCards(ctx, d.ID, []uuid.UUID{cardID}); err != nil {
				return err
			}
		}
	}
	for _, d := range targets {
		if !have[d.ID] {
			if err := decks.AddCards(ctx, d.ID, []uuid.UUID{cardID}); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetHints implements CardService.SetHints
func (s *cardServiceImpl) SetHints(
	ctx context.Context,
	userID, cardID uuid.UUID,
	hintFront, hintBack *string,
) (*domain.CardDetails, error) {
	card, err := OwnedCard(ctx, s.cards, userID, cardID)
	if err != nil {
		return nil, NewServiceError("set_hints", "failed to retrieve card", err)
	}
	if err := card.SetHints(hintFront, hintBack); err != nil {
		return nil, NewServiceError("set_hints", "invalid hints", err)
	}
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, NewServiceError("set_hints", "failed to save card", err)
	}

	details, err := cardDetails(ctx, s.decks, s.histories, userID, []*domain.Card{card})
	if err != nil {
		return nil, NewServiceError("set_hints", "failed to load card details", err)
	}
	return details[0], nil
}

// DeleteCards implements CardService.DeleteCards
func (s *cardServiceImpl) DeleteCards(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return ErrNoCardIDs
	}

	var deleted int64
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		if _, err := OwnedCards(ctx, cards, userID, ids); err != nil {
			return err
		}
		if err := s.histories.WithTx(tx).DeleteByCards(ctx, ids); err != nil {
			return err
		}
		if err := s.decks.WithTx(tx).DetachCards(ctx, ids); err != nil {
			return err
		}
		var err error
		deleted, err = cards.DeleteMany(ctx, ids)
		return err
	})
	if err != nil {
		log.Debug("failed to delete cards", slog.String("error", err.Error()))
		return NewServiceError("delete_cards", "failed to delete cards", err)
	}

	log.Info("deleted cards", slog.Int64("count", deleted))
	return nil
}
