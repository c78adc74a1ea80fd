package api

import (
	"time"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/google/uuid"
)

// Request and response bodies. Field rules mirror the domain limits so most
// bad input is rejected before reaching a service.

// RegisterRequest defines the payload for registering the caller. An empty
// username is derived from the token's profile claims.
type RegisterRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
}

// UpdateMeRequest defines the payload for PATCH /users/me.
type UpdateMeRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// SubjectRequest defines the payload for creating or replacing a subject.
type SubjectRequest struct {
	Name             string  `json:"name"             validate:"required,max=100"`
	FrontLabel       *string `json:"frontLabel"       validate:"omitempty,max=50"`
	BackLabel        *string `json:"backLabel"        validate:"omitempty,max=50"`
	DefaultSide      string  `json:"defaultSide"      validate:"omitempty,oneof=FRONT BACK ANY"`
	DisplayDeckNames bool    `json:"displayDeckNames"`
	CardOrder        string  `json:"cardOrder"        validate:"omitempty,oneof=NEWEST OLDEST RANDOM"`
}

func (r SubjectRequest) settings() domain.SubjectSettings {
	return domain.SubjectSettings{
		Name:             r.Name,
		FrontLabel:       r.FrontLabel,
		BackLabel:        r.BackLabel,
		DefaultSide:      domain.DisplaySide(r.DefaultSide),
		DisplayDeckNames: r.DisplayDeckNames,
		CardOrder:        domain.CardOrder(r.CardOrder),
	}
}

// CreateDeckRequest defines the payload for creating a deck, optionally with
// initial cards.
type CreateDeckRequest struct {
	Name    string      `json:"name"    validate:"required,max=60"`
	CardIDs []uuid.UUID `json:"cardIds"`
}

// ResolveDecksRequest lists deck names to get or create.
type ResolveDecksRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,required,max=60"`
}

// RenameDeckRequest defines the payload for renaming a deck.
type RenameDeckRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

// DeckCardsRequest lists the cards to add to or remove from a deck.
type DeckCardsRequest struct {
	CardIDs []uuid.UUID `json:"cardIds" validate:"required,min=1"`
}

// CardRequest defines the payload for creating or replacing a card. On update
// an absent decks field leaves memberships unchanged.
type CardRequest struct {
	Front     string   `json:"front"     validate:"required,max=100"`
	Back      string   `json:"back"      validate:"required,max=100"`
	HintFront *string  `json:"hintFront" validate:"omitempty,max=100"`
	HintBack  *string  `json:"hintBack"  validate:"omitempty,max=100"`
	Decks     []string `json:"decks"     validate:"omitempty,dive,max=60"`
}

func (r CardRequest) input() service.CardInput {
	return service.CardInput{
		Front:     r.Front,
		Back:      r.Back,
		HintFront: r.HintFront,
		HintBack:  r.HintBack,
		DeckNames: r.Decks,
	}
}

// BatchCardsRequest defines the payload for creating several cards at once.
type BatchCardsRequest struct {
	Cards []CardRequest `json:"cards" validate:"required,min=1,max=500,dive"`
}

// DeleteCardsRequest lists the cards to delete.
type DeleteCardsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// HintsRequest replaces both hints of a card. Absent or blank hints clear
// the hint.
type HintsRequest struct {
	HintFront *string `json:"hintFront" validate:"omitempty,max=100"`
	HintBack  *string `json:"hintBack"  validate:"omitempty,max=100"`
}

// CardResponse is a card with its decks, the caller's history and, for
// creation, whether the card already existed.
type CardResponse struct {
	*domain.CardDetails
	AlreadyExisted bool `json:"alreadyExisted"`
}

// RatingResponse is the caller's rating snapshot for a card.
type RatingResponse struct {
	CardID     uuid.UUID `json:"cardId"`
	LastRating int       `json:"lastRating"`
	AvgRating  float64   `json:"avgRating"`
	ViewCount  int       `json:"viewCount"`
	LastViewed time.Time `json:"lastViewed"`
}

func ratingToResponse(h *domain.CardHistory) RatingResponse {
	return RatingResponse{
		CardID:     h.CardID,
		LastRating: h.LastRating,
		AvgRating:  h.AvgRating,
		ViewCount:  h.ViewCount,
		LastViewed: h.LastViewed,
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
