package testutils

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

type membership struct {
	cardID uuid.UUID
	deckID uuid.UUID
}

type historyKey struct {
	cardID uuid.UUID
	userID uuid.UUID
}

type memData struct {
	users     map[uuid.UUID]domain.User
	subjects  map[uuid.UUID]domain.Subject
	decks     map[uuid.UUID]domain.Deck
	cards     map[uuid.UUID]domain.Card
	cardSeq   map[uuid.UUID]int64
	members   map[membership]struct{}
	histories map[historyKey]domain.CardHistory
}

func (d memData) clone() memData {
	c := memData{
		users:     make(map[uuid.UUID]domain.User, len(d.users)),
		subjects:  make(map[uuid.UUID]domain.Subject, len(d.subjects)),
		decks:     make(map[uuid.UUID]domain.Deck, len(d.decks)),
		cards:     make(map[uuid.UUID]domain.Card, len(d.cards)),
		cardSeq:   make(map[uuid.UUID]int64, len(d.cardSeq)),
		members:   make(map[membership]struct{}, len(d.members)),
		histories: make(map[historyKey]domain.CardHistory, len(d.histories)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.subjects {
		c.subjects[k] = v
	}
	for k, v := range d.decks {
		c.decks[k] = v
	}
	for k, v := range d.cards {
		c.cards[k] = v
	}
	for k, v := range d.cardSeq {
		c.cardSeq[k] = v
	}
	for k := range d.members {
		c.members[k] = struct{}{}
	}
	for k, v := range d.histories {
		c.histories[k] = v
	}
	return c
}

// MemDB is an in-memory database backing the store interfaces. Values are
// copied in and out so callers never share memory with the stored state.
type MemDB struct {
	mu   sync.Mutex
	data memData
	seq  int64

	// FailCreateMany, when set, is returned by CardStore.CreateMany.
	FailCreateMany error
}

// NewMemDB creates an empty in-memory database.
func NewMemDB() *MemDB {
	return &MemDB{data: memData{}.clone()}
}

// Cards returns a CardStore view of the database.
func (db *MemDB) Cards() store.CardStore { return &memCardStore{db: db} }

// Decks returns a DeckStore view of the database.
func (db *MemDB) Decks() store.DeckStore { return &memDeckStore{db: db} }

// Subjects returns a SubjectStore view of the database.
func (db *MemDB) Subjects() store.SubjectStore { return &memSubjectStore{db: db} }

// Users returns a UserStore view of the database.
func (db *MemDB) Users() store.UserStore { return &memUserStore{db: db} }

// Histories returns a CardHistoryStore view of the database.
func (db *MemDB) Histories() store.CardHistoryStore { return &memHistoryStore{db: db} }

// Stats returns a StatsStore view of the database.
func (db *MemDB) Stats() store.StatsStore { return &memStatsStore{db: db} }

// Transactor returns a store.Transactor that restores the data on failure.
func (db *MemDB) Transactor() store.Transactor { return memTransactor{db: db} }

// CardCount returns the number of stored cards.
func (db *MemDB) CardCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.data.cards)
}

// DeckCount returns the number of stored decks.
func (db *MemDB) DeckCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.data.decks)
}

// MembershipCount returns the number of card/deck links.
func (db *MemDB) MembershipCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.data.members)
}

// IsMember reports whether the card is linked to the deck.
func (db *MemDB) IsMember(cardID, deckID uuid.UUID) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.data.members[membership{cardID: cardID, deckID: deckID}]
	return ok
}

// cardsInOrder returns the stored cards matching keep in insertion order.
func (db *MemDB) cardsInOrder(keep func(domain.Card) bool) []*domain.Card {
	var out []*domain.Card
	for _, c := range db.data.cards {
		if keep(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return db.data.cardSeq[out[i].ID] < db.data.cardSeq[out[j].ID]
	})
	return out
}

func (db *MemDB) decksOfCard(cardID uuid.UUID) []domain.Deck {
	var out []domain.Deck
	for m := range db.data.members {
		if m.cardID == cardID {
			out = append(out, db.data.decks[m.deckID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type memTransactor struct {
	db *MemDB
}

// RunInTransaction runs fn with a nil transaction. Store views ignore the
// transaction, and the data is restored if fn returns an error.
func (t memTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	t.db.mu.Lock()
	snapshot := t.db.data.clone()
	t.db.mu.Unlock()

	if err := fn(ctx, nil); err != nil {
		t.db.mu.Lock()
		t.db.data = snapshot
		t.db.mu.Unlock()
		return err
	}
	return nil
}

type memCardStore struct {
	db *MemDB
}

func (s *memCardStore) WithTx(*sql.Tx) store.CardStore { return s }

func (s *memCardStore) insert(card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	if _, ok := s.db.data.subjects[card.SubjectID]; !ok {
		return store.ErrSubjectNotFound
	}
	for _, c := range s.db.data.cards {
		if c.SubjectID == card.SubjectID && c.Front == card.Front && c.Back == card.Back {
			return store.ErrCardExists
		}
	}
	s.db.seq++
	s.db.data.cards[card.ID] = *card
	s.db.data.cardSeq[card.ID] = s.db.seq
	return nil
}

func (s *memCardStore) Create(_ context.Context, card *domain.Card) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.insert(card)
}

func (s *memCardStore) CreateMany(_ context.Context, cards []*domain.Card) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.FailCreateMany != nil {
		return s.db.FailCreateMany
	}
	for _, c := range cards {
		if err := s.insert(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *memCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.data.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &c, nil
}

func (s *memCardStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.db.cardsInOrder(func(c domain.Card) bool { return want[c.ID] }), nil
}

func (s *memCardStore) FindByKey(_ context.Context, subjectID uuid.UUID, key domain.CardKey) (*domain.Card, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.data.cards {
		if c.SubjectID == subjectID && c.Front == key.Front && c.Back == key.Back {
			return &c, nil
		}
	}
	return nil, store.ErrCardNotFound
}

func (s *memCardStore) FindExistingKeys(
	_ context.Context,
	subjectID uuid.UUID,
	keys []domain.CardKey,
) (map[domain.CardKey]struct{}, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	want := make(map[domain.CardKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	existing := make(map[domain.CardKey]struct{})
	for _, c := range s.db.data.cards {
		if c.SubjectID == subjectID && want[c.Key()] {
			existing[c.Key()] = struct{}{}
		}
	}
	return existing, nil
}

func (s *memCardStore) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]*domain.Card, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.cardsInOrder(func(c domain.Card) bool { return c.SubjectID == subjectID }), nil
}

func (s *memCardStore) ListByDeck(_ context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.cardsInOrder(func(c domain.Card) bool {
		_, ok := s.db.data.members[membership{cardID: c.ID, deckID: deckID}]
		return ok
	}), nil
}

func (s *memCardStore) Update(_ context.Context, card *domain.Card) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	for id, c := range s.db.data.cards {
		if id != card.ID && c.SubjectID == card.SubjectID && c.Front == card.Front && c.Back == card.Back {
			return store.ErrCardExists
		}
	}
	s.db.data.cards[card.ID] = *card
	return nil
}

func (s *memCardStore) DeleteMany(_ context.Context, ids []uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.db.data.cards[id]; !ok {
			continue
		}
		delete(s.db.data.cards, id)
		delete(s.db.data.cardSeq, id)
		for m := range s.db.data.members {
			if m.cardID == id {
				delete(s.db.data.members, m)
			}
		}
		for k := range s.db.data.histories {
			if k.cardID == id {
				delete(s.db.data.histories, k)
			}
		}
		n++
	}
	return n, nil
}

func (s *memCardStore) exportRows(cards []*domain.Card, deckFilter func(domain.Deck) bool, leftJoin bool) []domain.CardDeckRow {
	var rows []domain.CardDeckRow
	for _, c := range cards {
		row := domain.CardDeckRow{
			CardID:    c.ID,
			Front:     c.Front,
			Back:      c.Back,
			HintFront: c.HintFront,
			HintBack:  c.HintBack,
		}
		matched := false
		for _, d := range s.db.decksOfCard(c.ID) {
			if !deckFilter(d) {
				continue
			}
			name := d.Name
			r := row
			r.DeckName = &name
			rows = append(rows, r)
			matched = true
		}
		if !matched && leftJoin {
			rows = append(rows, row)
		}
	}
	return rows
}

func (s *memCardStore) ExportRowsBySubject(_ context.Context, subjectID uuid.UUID) ([]domain.CardDeckRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cards := s.db.cardsInOrder(func(c domain.Card) bool { return c.SubjectID == subjectID })
	return s.exportRows(cards, func(domain.Deck) bool { return true }, true), nil
}

func (s *memCardStore) ExportRowsByDeck(_ context.Context, deckID uuid.UUID) ([]domain.CardDeckRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cards := s.db.cardsInOrder(func(c domain.Card) bool {
		_, ok := s.db.data.members[membership{cardID: c.ID, deckID: deckID}]
		return ok
	})
	return s.exportRows(cards, func(d domain.Deck) bool { return d.ID == deckID }, false), nil
}

type memDeckStore struct {
	db *MemDB
}

func (s *memDeckStore) WithTx(*sql.Tx) store.DeckStore { return s }

func (s *memDeckStore) nameTaken(deck *domain.Deck) bool {
	for id, d := range s.db.data.decks {
		if id != deck.ID && d.SubjectID == deck.SubjectID && d.Name == deck.Name {
			return true
		}
	}
	return false
}

func (s *memDeckStore) Create(_ context.Context, deck *domain.Deck) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := deck.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	if _, ok := s.db.data.subjects[deck.SubjectID]; !ok {
		return store.ErrSubjectNotFound
	}
	if s.nameTaken(deck) {
		return store.ErrDeckNameExists
	}
	s.db.data.decks[deck.ID] = *deck
	return nil
}

func (s *memDeckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.data.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &d, nil
}

func (s *memDeckStore) GetByNames(_ context.Context, subjectID uuid.UUID, names []string) ([]*domain.Deck, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []*domain.Deck
	for _, d := range s.db.data.decks {
		if d.SubjectID == subjectID && want[d.Name] {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memDeckStore) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]domain.DeckSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []domain.DeckSummary
	for _, d := range s.db.data.decks {
		if d.SubjectID != subjectID {
			continue
		}
		count := 0
		for m := range s.db.data.members {
			if m.deckID == d.ID {
				count++
			}
		}
		out = append(out, domain.DeckSummary{Deck: d, CardCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memDeckStore) ListByCards(_ context.Context, cardIDs []uuid.UUID) (map[uuid.UUID][]domain.Deck, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[uuid.UUID][]domain.Deck, len(cardIDs))
	for _, id := range cardIDs {
		if decks := s.db.decksOfCard(id); len(decks) > 0 {
			out[id] = decks
		}
	}
	return out, nil
}

func (s *memDeckStore) Update(_ context.Context, deck *domain.Deck) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.decks[deck.ID]; !ok {
		return store.ErrDeckNotFound
	}
	if s.nameTaken(deck) {
		return store.ErrDeckNameExists
	}
	s.db.data.decks[deck.ID] = *deck
	return nil
}

func (s *memDeckStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	for m := range s.db.data.members {
		if m.deckID == id {
			delete(s.db.data.members, m)
		}
	}
	delete(s.db.data.decks, id)
	return nil
}

func (s *memDeckStore) AddCards(_ context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.decks[deckID]; !ok {
		return store.ErrDeckNotFound
	}
	for _, id := range cardIDs {
		if _, ok := s.db.data.cards[id]; !ok {
			return store.ErrCardNotFound
		}
	}
	for _, id := range cardIDs {
		s.db.data.members[membership{cardID: id, deckID: deckID}] = struct{}{}
	}
	return nil
}

func (s *memDeckStore) RemoveCards(_ context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, id := range cardIDs {
		m := membership{cardID: id, deckID: deckID}
		if _, ok := s.db.data.members[m]; ok {
			delete(s.db.data.members, m)
			n++
		}
	}
	return n, nil
}

func (s *memDeckStore) MemberCardIDs(_ context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []uuid.UUID
	for _, id := range cardIDs {
		if _, ok := s.db.data.members[membership{cardID: id, deckID: deckID}]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memDeckStore) DetachAll(_ context.Context, deckID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for m := range s.db.data.members {
		if m.deckID == deckID {
			delete(s.db.data.members, m)
			n++
		}
	}
	return n, nil
}

func (s *memDeckStore) DetachCards(_ context.Context, cardIDs []uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, id := range cardIDs {
		for m := range s.db.data.members {
			if m.cardID == id {
				delete(s.db.data.members, m)
			}
		}
	}
	return nil
}

type memSubjectStore struct {
	db *MemDB
}

func (s *memSubjectStore) WithTx(*sql.Tx) store.SubjectStore { return s }

func (s *memSubjectStore) nameTaken(subject *domain.Subject) bool {
	for id, other := range s.db.data.subjects {
		if id != subject.ID && other.UserID == subject.UserID && other.Name == subject.Name {
			return true
		}
	}
	return false
}

func (s *memSubjectStore) Create(_ context.Context, subject *domain.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := subject.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	if _, ok := s.db.data.users[subject.UserID]; !ok {
		return store.ErrUserNotFound
	}
	if s.nameTaken(subject) {
		return store.ErrSubjectNameExists
	}
	s.db.data.subjects[subject.ID] = *subject
	return nil
}

func (s *memSubjectStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	subject, ok := s.db.data.subjects[id]
	if !ok {
		return nil, store.ErrSubjectNotFound
	}
	return &subject, nil
}

func (s *memSubjectStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Subject
	for _, subject := range s.db.data.subjects {
		if subject.UserID == userID {
			subject := subject
			out = append(out, &subject)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memSubjectStore) Update(_ context.Context, subject *domain.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.subjects[subject.ID]; !ok {
		return store.ErrSubjectNotFound
	}
	if s.nameTaken(subject) {
		return store.ErrSubjectNameExists
	}
	s.db.data.subjects[subject.ID] = *subject
	return nil
}

func (s *memSubjectStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.subjects[id]; !ok {
		return store.ErrSubjectNotFound
	}
	delete(s.db.data.subjects, id)
	for deckID, d := range s.db.data.decks {
		if d.SubjectID == id {
			delete(s.db.data.decks, deckID)
		}
	}
	for cardID, c := range s.db.data.cards {
		if c.SubjectID != id {
			continue
		}
		delete(s.db.data.cards, cardID)
		delete(s.db.data.cardSeq, cardID)
		for k := range s.db.data.histories {
			if k.cardID == cardID {
				delete(s.db.data.histories, k)
			}
		}
	}
	for m := range s.db.data.members {
		if _, ok := s.db.data.cards[m.cardID]; !ok {
			delete(s.db.data.members, m)
		}
	}
	return nil
}

type memUserStore struct {
	db *MemDB
}

func (s *memUserStore) WithTx(*sql.Tx) store.UserStore { return s }

func (s *memUserStore) conflict(user *domain.User) error {
	for id, u := range s.db.data.users {
		if id == user.ID {
			continue
		}
		if u.AuthSubject == user.AuthSubject {
			return store.ErrAuthSubjectExists
		}
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	return nil
}

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := user.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	if err := s.conflict(user); err != nil {
		return err
	}
	s.db.data.users[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.data.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUserStore) GetByAuthSubject(_ context.Context, authSubject string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.data.users {
		if u.AuthSubject == authSubject {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) ListActive(_ context.Context) ([]*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.User
	for _, u := range s.db.data.users {
		if u.IsActive {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *memUserStore) Update(_ context.Context, user *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if err := s.conflict(user); err != nil {
		return err
	}
	s.db.data.users[user.ID] = *user
	return nil
}

type memHistoryStore struct {
	db *MemDB
}

func (s *memHistoryStore) WithTx(*sql.Tx) store.CardHistoryStore { return s }

func (s *memHistoryStore) RecordRating(
	_ context.Context,
	cardID, userID uuid.UUID,
	rating int,
	at time.Time,
) (*domain.CardHistory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.cards[cardID]; !ok {
		return nil, store.ErrCardNotFound
	}
	if _, ok := s.db.data.users[userID]; !ok {
		return nil, store.ErrUserNotFound
	}
	key := historyKey{cardID: cardID, userID: userID}
	h, ok := s.db.data.histories[key]
	if !ok {
		h = domain.CardHistory{CardID: cardID, UserID: userID}
	}
	if err := h.Record(rating, at); err != nil {
		return nil, store.ErrInvalidEntity
	}
	s.db.data.histories[key] = h
	return &h, nil
}

func (s *memHistoryStore) Get(_ context.Context, cardID, userID uuid.UUID) (*domain.CardHistory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h, ok := s.db.data.histories[historyKey{cardID: cardID, userID: userID}]
	if !ok {
		return nil, store.ErrCardHistoryNotFound
	}
	return &h, nil
}

func (s *memHistoryStore) ListByCards(
	_ context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) (map[uuid.UUID]*domain.CardHistory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[uuid.UUID]*domain.CardHistory, len(cardIDs))
	for _, id := range cardIDs {
		if h, ok := s.db.data.histories[historyKey{cardID: id, userID: userID}]; ok {
			h := h
			out[id] = &h
		}
	}
	return out, nil
}

func (s *memHistoryStore) DeleteByCards(_ context.Context, cardIDs []uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, id := range cardIDs {
		for k := range s.db.data.histories {
			if k.cardID == id {
				delete(s.db.data.histories, k)
			}
		}
	}
	return nil
}

type memStatsStore struct {
	db *MemDB
}

func (s *memStatsStore) userHistories(userID uuid.UUID) []domain.CardHistory {
	var out []domain.CardHistory
	for k, h := range s.db.data.histories {
		if k.userID == userID {
			out = append(out, h)
		}
	}
	return out
}

func (s *memStatsStore) CountCards(_ context.Context, userID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, c := range s.db.data.cards {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memStatsStore) CountUnviewedCards(_ context.Context, userID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, c := range s.db.data.cards {
		if c.UserID != userID {
			continue
		}
		if _, ok := s.db.data.histories[historyKey{cardID: c.ID, userID: userID}]; !ok {
			n++
		}
	}
	return n, nil
}

func (s *memStatsStore) SumViews(_ context.Context, userID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, h := range s.userHistories(userID) {
		n += h.ViewCount
	}
	return n, nil
}

func (s *memStatsStore) LastRatingCounts(_ context.Context, userID uuid.UUID) (map[int]int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	counts := make(map[int]int, domain.MaxRating)
	for _, h := range s.userHistories(userID) {
		counts[h.LastRating]++
	}
	return counts, nil
}

func (s *memStatsStore) top(userID uuid.UUID, less func(a, b domain.CardHistory) bool) (uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	hs := s.userHistories(userID)
	if len(hs) == 0 {
		return uuid.Nil, store.ErrCardNotFound
	}
	sort.Slice(hs, func(i, j int) bool { return less(hs[i], hs[j]) })
	return hs[0].CardID, nil
}

func (s *memStatsStore) HardestCardID(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.top(userID, func(a, b domain.CardHistory) bool {
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		return a.LastViewed.After(b.LastViewed)
	})
}

func (s *memStatsStore) MostViewedCardID(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.top(userID, func(a, b domain.CardHistory) bool {
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		return a.LastViewed.After(b.LastViewed)
	})
}
