package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DisplaySide selects which side of a card is shown first.
type DisplaySide string

// Valid display sides.
const (
	SideFront DisplaySide = "FRONT"
	SideBack  DisplaySide = "BACK"
	SideAny   DisplaySide = "ANY"
)

// CardOrder controls the default ordering of a subject's cards.
type CardOrder string

// Valid card orders.
const (
	OrderNewest CardOrder = "NEWEST"
	OrderOldest CardOrder = "OLDEST"
	OrderRandom CardOrder = "RANDOM"
)

// ErrSubjectUserIDEmpty is returned when a subject has no owner.
var ErrSubjectUserIDEmpty = errors.New("subject user ID cannot be empty")

// Subject is the top-level grouping owned by a user. Names are unique per user.
type Subject struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"userId"`
	Name             string      `json:"name"`
	FrontLabel       *string     `json:"frontLabel,omitempty"`
	BackLabel        *string     `json:"backLabel,omitempty"`
	DefaultSide      DisplaySide `json:"defaultSide"`
	DisplayDeckNames bool        `json:"displayDeckNames"`
	CardOrder        CardOrder   `json:"cardOrder"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// SubjectSettings holds the editable fields of a subject.
// Empty DefaultSide and CardOrder fall back to FRONT and NEWEST.
type SubjectSettings struct {
	Name             string
	FrontLabel       *string
	BackLabel        *string
	DefaultSide      DisplaySide
	DisplayDeckNames bool
	CardOrder        CardOrder
}

// NewSubject creates a subject for the given user.
func NewSubject(userID uuid.UUID, settings SubjectSettings) (*Subject, error) {
	now := time.Now().UTC()
	s := &Subject{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(settings); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the subject's settings, leaving it untouched on error.
func (s *Subject) Update(settings SubjectSettings) error {
	updated := *s
	if err := updated.apply(settings); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now().UTC()
	*s = updated
	return nil
}

// Validate checks if the Subject has valid data.
func (s *Subject) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if s.UserID == uuid.Nil {
		return ErrSubjectUserIDEmpty
	}
	if _, err := checkText("name", s.Name, MaxSubjectNameLength); err != nil {
		return err
	}
	if err := checkOptional("frontLabel", s.FrontLabel, MaxLabelLength); err != nil {
		return err
	}
	if err := checkOptional("backLabel", s.BackLabel, MaxLabelLength); err != nil {
		return err
	}
	if !s.DefaultSide.Valid() {
		return NewValidationError("defaultSide", "must be FRONT, BACK or ANY", ErrInvalidFormat)
	}
	if !s.CardOrder.Valid() {
		return NewValidationError("cardOrder", "must be NEWEST, OLDEST or RANDOM", ErrInvalidFormat)
	}
	return nil
}

func (s *Subject) apply(settings SubjectSettings) error {
	name, err := checkText("name", settings.Name, MaxSubjectNameLength)
	if err != nil {
		return err
	}
	s.Name = name
	s.FrontLabel = NormalizeOptional(settings.FrontLabel)
	s.BackLabel = NormalizeOptional(settings.BackLabel)
	s.DefaultSide = settings.DefaultSide
	if s.DefaultSide == "" {
		s.DefaultSide = SideFront
	}
	s.CardOrder = settings.CardOrder
	if s.CardOrder == "" {
		s.CardOrder = OrderNewest
	}
	s.DisplayDeckNames = settings.DisplayDeckNames
	return nil
}

// Valid reports whether d is a known display side.
func (d DisplaySide) Valid() bool {
	switch d {
	case SideFront, SideBack, SideAny:
		return true
	}
	return false
}

// Valid reports whether o is a known card order.
func (o CardOrder) Valid() bool {
	switch o {
	case OrderNewest, OrderOldest, OrderRandom:
		return true
	}
	return false
}
