package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashcards-api/internal/api/shared"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service"
)

// DeckHandler handles deck requests, including card membership changes.
type DeckHandler struct {
	decks  service.DeckService
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(decks service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /subjects/{id}/decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	decks, err := h.decks.ListDecks(r.Context(), user.ID, subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// CreateDeck handles POST /subjects/{id}/decks
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), user.ID, subjectID, req.Name, req.CardIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// ResolveDecks handles POST /subjects/{id}/decks/resolve. It returns the
// named decks in request order, creating the missing ones.
func (h *DeckHandler) ResolveDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req ResolveDecksRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	decks, err := h.decks.GetOrCreateDecks(r.Context(), user.ID, subjectID, req.Names)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resolve decks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// GetDeck handles GET /decks/{id}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, deckID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	deck, err := h.decks.GetDeck(r.Context(), user.ID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// RenameDeck handles PATCH /decks/{id}
func (h *DeckHandler) RenameDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, deckID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req RenameDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.RenameDeck(r.Context(), user.ID, deckID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /decks/{id}
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, deckID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	if err := h.decks.DeleteDeck(r.Context(), user.ID, deckID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}
	shared.RespondNoContent(w)
}

// AddCards handles POST /decks/{id}/cards. A card from another subject fails
// the whole request with 400.
func (h *DeckHandler) AddCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, deckID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req DeckCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.decks.AddDeckToCards(r.Context(), user.ID, deckID, req.CardIDs); err != nil {
		HandleAPIError(w, r, err, "Failed to add cards to deck")
		return
	}
	shared.RespondNoContent(w)
}

// RemoveCards handles DELETE /decks/{id}/cards
func (h *DeckHandler) RemoveCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, deckID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req DeckCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.decks.RemoveDeckFromCards(r.Context(), user.ID, deckID, req.CardIDs); err != nil {
		HandleAPIError(w, r, err, "Failed to remove cards from deck")
		return
	}
	shared.RespondNoContent(w)
}
