package service

import (
	"context"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// Resources owned by another user are reported as not found so their
// existence is not disclosed.

// OwnedSubject loads a subject that belongs to userID.
func OwnedSubject(ctx context.Context, subjects store.SubjectStore, userID, subjectID uuid.UUID) (*domain.Subject, error) {
	subject, err := subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.UserID != userID {
		return nil, store.ErrSubjectNotFound
	}
	return subject, nil
}

// OwnedDeck loads a deck that belongs to userID.
func OwnedDeck(ctx context.Context, decks store.DeckStore, userID, deckID uuid.UUID) (*domain.Deck, error) {
	deck, err := decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, store.ErrDeckNotFound
	}
	return deck, nil
}

// OwnedCard loads a card that belongs to userID.
func OwnedCard(ctx context.Context, cards store.CardStore, userID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

// OwnedCards loads every card in ids, returning a NotFoundError that lists
// the ids that are missing or owned by someone else. The result follows the
// order of ids, which must not contain repeats.
func OwnedCards(ctx context.Context, cards store.CardStore, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Card, error) {
	found, err := cards.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Card, len(found))
	for _, c := range found {
		if c.UserID == userID {
			byID[c.ID] = c
		}
	}

	out := make([]*domain.Card, 0, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, c)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Entity: "card", IDs: missing}
	}
	return out, nil
}

// ResolveDecks returns the subject's decks with the given names in input
// order, creating the ones that do not exist yet. Names are trimmed and
// repeats are dropped.
func ResolveDecks(ctx context.Context, decks store.DeckStore, subject *domain.Subject, names []string) ([]*domain.Deck, error) {
	names = domain.UniqueNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	existing, err := decks.GetByNames(ctx, subject.ID, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*domain.Deck, len(existing))
	for _, d := range existing {
		byName[d.Name] = d
	}

	out := make([]*domain.Deck, 0, len(names))
	for _, name := range names {
		if d, ok := byName[name]; ok {
			out = append(out, d)
			continue
		}
		d, err := domain.NewDeck(subject.UserID, subject.ID, name)
		if err != nil {
			return nil, err
		}
		if err := decks.Create(ctx, d); err != nil {
			return nil, err
		}
		byName[name] = d
		out = append(out, d)
	}
	return out, nil
}

// uniqueIDs drops nil and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// cardDetails attaches decks and the user's history to each card.
func cardDetails(
	ctx context.Context,
	decks store.DeckStore,
	histories store.CardHistoryStore,
	userID uuid.UUID,
	cards []*domain.Card,
) ([]*domain.CardDetails, error) {
	if len(cards) == 0 {
		return []*domain.CardDetails{}, nil
	}
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}

	deckMap, err := decks.ListByCards(ctx, ids)
	if err != nil {
		return nil, err
	}
	historyMap, err := histories.ListByCards(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.CardDetails, len(cards))
	for i, c := range cards {
		d := deckMap[c.ID]
		if d == nil {
			d = []domain.Deck{}
		}
		out[i] = &domain.CardDetails{Card: *c, Decks: d, History: historyMap[c.ID]}
	}
	return out, nil
}
