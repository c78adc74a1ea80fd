package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDeckSubjectIDEmpty is returned when a deck has no subject.
	ErrDeckSubjectIDEmpty = errors.New("deck subject ID cannot be empty")

	// ErrDeckUserIDEmpty is returned when a deck has no owner.
	ErrDeckUserIDEmpty = errors.New("deck user ID cannot be empty")
)

// Deck is a named subset of a subject's cards. Names are unique per subject.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	SubjectID uuid.UUID `json:"subjectId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeckSummary is a deck with the number of cards it holds.
type DeckSummary struct {
	Deck
	CardCount int `json:"cardCount"`
}

// DeckDetails is a deck together with its cards in creation order.
type DeckDetails struct {
	Deck
	Cards []*Card `json:"cards"`
}

// NewDeck creates a deck in the given subject.
func NewDeck(userID, subjectID uuid.UUID, name string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:        uuid.New(),
		UserID:    userID,
		SubjectID: subjectID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if d.UserID == uuid.Nil {
		return ErrDeckUserIDEmpty
	}
	if d.SubjectID == uuid.Nil {
		return ErrDeckSubjectIDEmpty
	}
	_, err := checkText("name", d.Name, MaxDeckNameLength)
	return err
}

// Rename changes the deck name, leaving the deck untouched on error.
func (d *Deck) Rename(name string) error {
	name, err := checkText("name", name, MaxDeckNameLength)
	if err != nil {
		return err
	}
	d.Name = name
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// ParseDeckNames splits a ';' separated list, trimming entries and dropping
// blanks and repeats while keeping first-seen order.
func ParseDeckNames(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	return UniqueNames(strings.Split(field, ";"))
}

// UniqueNames trims names and removes blanks and repeats, keeping order.
func UniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
