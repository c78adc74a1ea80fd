package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardSubjectIDEmpty is returned when a card's subject ID is empty or nil.
	ErrCardSubjectIDEmpty = errors.New("card subject ID cannot be empty")
)

// Card is a two-sided flashcard belonging to a subject. The (front, back)
// pair is unique within the subject.
type Card struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	SubjectID uuid.UUID `json:"subjectId"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	HintFront *string   `json:"hintFront,omitempty"`
	HintBack  *string   `json:"hintBack,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CardContent is the user-editable part of a card.
type CardContent struct {
	Front     string
	Back      string
	HintFront *string
	HintBack  *string
}

// Key returns the (front, back) pair that identifies the card within its subject.
func (c CardContent) Key() CardKey {
	return CardKey{Front: c.Front, Back: c.Back}
}

// CardKey is the uniqueness key of a card inside a subject.
type CardKey struct {
	Front string
	Back  string
}

// NewCard creates a new Card for the given user and subject.
// Front and back are trimmed, blank hints become nil.
func NewCard(userID, subjectID uuid.UUID, content CardContent) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		UserID:    userID,
		SubjectID: subjectID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.apply(content); err != nil {
		return nil, err
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}
	if c.SubjectID == uuid.Nil {
		return ErrCardSubjectIDEmpty
	}
	if _, err := checkText("front", c.Front, MaxCardTextLength); err != nil {
		return err
	}
	if _, err := checkText("back", c.Back, MaxCardTextLength); err != nil {
		return err
	}
	if err := checkOptional("hintFront", c.HintFront, MaxHintLength); err != nil {
		return err
	}
	return checkOptional("hintBack", c.HintBack, MaxHintLength)
}

// Key returns the card's (front, back) pair.
func (c *Card) Key() CardKey {
	return CardKey{Front: c.Front, Back: c.Back}
}

// Update replaces the card's content. The card is left unchanged on error.
func (c *Card) Update(content CardContent) error {
	updated := *c
	if err := updated.apply(content); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now().UTC()
	*c = updated
	return nil
}

// SetHints replaces both hints. Blank hints are cleared.
func (c *Card) SetHints(hintFront, hintBack *string) error {
	hf := NormalizeOptional(hintFront)
	hb := NormalizeOptional(hintBack)
	if err := checkOptional("hintFront", hf, MaxHintLength); err != nil {
		return err
	}
	if err := checkOptional("hintBack", hb, MaxHintLength); err != nil {
		return err
	}
	c.HintFront = hf
	c.HintBack = hb
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Card) apply(content CardContent) error {
	front, err := checkText("front", content.Front, MaxCardTextLength)
	if err != nil {
		return err
	}
	back, err := checkText("back", content.Back, MaxCardTextLength)
	if err != nil {
		return err
	}
	c.Front = front
	c.Back = back
	c.HintFront = NormalizeOptional(content.HintFront)
	c.HintBack = NormalizeOptional(content.HintBack)
	return nil
}
