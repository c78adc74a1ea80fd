package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// DeckService manages decks and their card memberships.
type DeckService interface {
	// CreateDeck creates a deck in the subject and attaches the optional cards.
	CreateDeck(ctx context.Context, userID, subjectID uuid.UUID, name string, cardIDs []uuid.UUID) (*domain.Deck, error)

	// GetOrCreateDecks returns decks by name in input order, creating missing ones.
	GetOrCreateDecks(ctx context.Context, userID, subjectID uuid.UUID, names []string) ([]*domain.Deck, error)

	// ListDecks lists the subject's decks with their card counts.
	ListDecks(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.DeckSummary, error)

	// GetDeck retrieves a deck and its cards.
	GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.DeckDetails, error)

	// RenameDeck changes a deck's name.
	RenameDeck(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Deck, error)

	// DeleteDeck detaches the deck from all cards and deletes it.
	DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error

	// AddDeckToCards links the deck to every card. All cards must exist and
	// belong to the deck's subject, otherwise nothing is linked.
	AddDeckToCards(ctx context.Context, userID, deckID uuid.UUID, cardIDs []uuid.UUID) error

	// RemoveDeckFromCards unlinks the deck from the cards. Cards that are not
	// members are skipped, but a card outside the deck's subject fails the
	// whole batch.
	RemoveDeckFromCards(ctx context.Context, userID, deckID uuid.UUID, cardIDs []uuid.UUID) error
}

type deckServiceImpl struct {
	tx       store.Transactor
	decks    store.DeckStore
	cards    store.CardStore
	subjects store.SubjectStore
	logger   *slog.Logger
}

// NewDeckService creates a new DeckService
func NewDeckService(
	tx store.Transactor,
	decks store.DeckStore,
	cards store.CardStore,
	subjects store.SubjectStore,
	logger *slog.Logger,
) (DeckService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if decks == nil || cards == nil || subjects == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &deckServiceImpl{
		tx:       tx,
		decks:    decks,
		cards:    cards,
		subjects: subjects,
		logger:   logger.With(slog.String("component", "deck_service")),
	}, nil
}

// attachCards links cardIDs to deck after checking every card exists, is
// owned by userID and lives in the deck's subject.
func attachCards(
	ctx context.Context,
	decks store.DeckStore,
	cards store.CardStore,
	deck *domain.Deck,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) error {
	if err := checkDeckCards(ctx, cards, deck, userID, cardIDs); err != nil {
		return err
	}
	return decks.AddCards(ctx, deck.ID, cardIDs)
}

// checkDeckCards fails unless every card exists, is owned by userID and
// lives in the deck's subject.
func checkDeckCards(
	ctx context.Context,
	cards store.CardStore,
	deck *domain.Deck,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) error {
	found, err := OwnedCards(ctx, cards, userID, cardIDs)
	if err != nil {
		return err
	}
	for _, c := range found {
		if c.SubjectID != deck.SubjectID {
			return fmt.Errorf("%w: card %s is not in the subject of deck %q", ErrCrossSubject, c.ID, deck.Name)
		}
	}
	return nil
}

// CreateDeck implements DeckService.CreateDeck
func (s *deckServiceImpl) CreateDeck(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	name string,
	cardIDs []uuid.UUID,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	cardIDs = uniqueIDs(cardIDs)

	var deck *domain.Deck
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)

		subject, err := OwnedSubject(ctx, s.subjects.WithTx(tx), userID, subjectID)
		if err != nil {
			return err
		}
		deck, err = domain.NewDeck(userID, subject.ID, name)
		if err != nil {
			return err
		}
		if err := decks.Create(ctx, deck); err != nil {
			return err
		}
		if len(cardIDs) == 0 {
			return nil
		}
		return attachCards(ctx, decks, s.cards.WithTx(tx), deck, userID, cardIDs)
	})
	if err != nil {
		log.Debug("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("subject_id", subjectID.String()))
		return nil, NewServiceError("create_deck", "failed to create deck", err)
	}

	log.Info("created deck",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("card_count", len(cardIDs)))
	return deck, nil
}

// GetOrCreateDecks implements DeckService.GetOrCreateDecks
func (s *deckServiceImpl) GetOrCreateDecks(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	names []string,
) ([]*domain.Deck, error) {
	var out []*domain.Deck
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		subject, err := OwnedSubject(ctx, s.subjects.WithTx(tx), userID, subjectID)
		if err != nil {
			return err
		}
		out, err = ResolveDecks(ctx, s.decks.WithTx(tx), subject, names)
		return err
	})
	if err != nil {
		return nil, NewServiceError("resolve_decks", "failed to resolve decks", err)
	}
	if out == nil {
		out = []*domain.Deck{}
	}
	return out, nil
}

// ListDecks implements DeckService.ListDecks
func (s *deckServiceImpl) ListDecks(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.DeckSummary, error) {
	if _, err := OwnedSubject(ctx, s.subjects, userID, subjectID); err != nil {
		return nil, NewServiceError("list_decks", "failed to retrieve subject", err)
	}
	decks, err := s.decks.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, NewServiceError("list_decks", "failed to list decks", err)
	}
	if decks == nil {
		decks = []domain.DeckSummary{}
	}
	return decks, nil
}

// GetDeck implements DeckService.GetDeck
func (s *deckServiceImpl) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.DeckDetails, error) {
	deck, err := OwnedDeck(ctx, s.decks, userID, deckID)
	if err != nil {
		return nil, NewServiceError("get_deck", "failed to retrieve deck", err)
	}
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, NewServiceError("get_deck", "failed to list deck cards", err)
	}
	if cards == nil {
		cards = []*domain.Card{}
	}
	return &domain.DeckDetails{Deck: *deck, Cards: cards}, nil
}

// RenameDeck implements DeckService.RenameDeck
func (s *deckServiceImpl) RenameDeck(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Deck, error) {
	deck, err := OwnedDeck(ctx, s.decks, userID, deckID)
	if err != nil {
		return nil, NewServiceError("rename_deck", "failed to retrieve deck", err)
	}
	if err := deck.Rename(name); err != nil {
		return nil, NewServiceError("rename_deck", "invalid deck name", err)
	}
	if err := s.decks.Update(ctx, deck); err != nil {
		return nil, NewServiceError("rename_deck", "failed to save deck", err)
	}
	return deck, nil
}

// DeleteDeck implements DeckService.DeleteDeck
func (s *deckServiceImpl) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var detached int64
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)
		if _, err := OwnedDeck(ctx, decks, userID, deckID); err != nil {
			return err
		}
		var err error
		detached, err = decks.DetachAll(ctx, deckID)
		if err != nil {
			return err
		}
		return decks.Delete(ctx, deckID)
	})
	if err != nil {
		log.Debug("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return NewServiceError("delete_deck", "failed to delete deck", err)
	}

	log.Info("deleted deck",
		slog.String("deck_id", deckID.String()),
		slog.Int64("detached_cards", detached))
	return nil
}

// AddDeckToCards implements DeckService.AddDeckToCards
func (s *deckServiceImpl) AddDeckToCards(ctx context.Context, userID, deckID uuid.UUID, cardIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cardIDs = uniqueIDs(cardIDs)
	if len(cardIDs) == 0 {
		return ErrNoCardIDs
	}

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)
		deck, err := OwnedDeck(ctx, decks, userID, deckID)
		if err != nil {
			return err
		}
		return attachCards(ctx, decks, s.cards.WithTx(tx), deck, userID, cardIDs)
	})
	if err != nil {
		log.Debug("failed to add deck to cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return NewServiceError("add_deck_to_cards", "failed to add deck to cards", err)
	}

	log.Info("added deck to cards",
		slog.String("deck_id", deckID.String()),
		slog.Int("card_count", len(cardIDs)))
	return nil
}

// RemoveDeckFromCards implements DeckService.RemoveDeckFromCards
func (s *deckServiceImpl) RemoveDeckFromCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardIDs []uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cardIDs = uniqueIDs(cardIDs)
	if len(cardIDs) == 0 {
		return ErrNoCardIDs
	}

	var removed int64
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)
		deck, err := OwnedDeck(ctx, decks, userID, deckID)
		if err != nil {
			return err
		}
		if err := checkDeckCards(ctx, s.cards.WithTx(tx), deck, userID, cardIDs); err != nil {
			return err
		}

		members, err := decks.MemberCardIDs(ctx, deckID, cardIDs)
		if err != nil {
			return err
		}
		isMember := make(map[uuid.UUID]bool, len(members))
		for _, id := range members {
			isMember[id] = true
		}
		for _, id := range cardIDs {
			if !isMember[id] {
				log.Info("card is not in deck, skipping",
					slog.String("card_id", id.String()),
					slog.String("deck_id", deckID.String()))
			}
		}
		if len(members) == 0 {
			return nil
		}
		removed, err = decks.RemoveCards(ctx, deckID, members)
		return err
	})
	if err != nil {
		log.Debug("failed to remove deck from cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return NewServiceError("remove_deck_from_cards", "failed to remove deck from cards", err)
	}

	log.Info("removed deck from cards",
		slog.String("deck_id", deckID.String()),
		slog.Int64("removed", removed))
	return nil
}
