package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/flashdeck/flashcards-api/internal/api/shared"
	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/google/uuid"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cards   service.CardService
	ratings service.RatingService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cards service.CardService,
	ratings service.RatingService,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:   cards,
		ratings: ratings,
		logger:  logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /subjects/{id}/cards. Optional query parameters
// minAvgRating and maxAvgRating filter on the caller's average rating and
// shuffle=true returns the cards in random order.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var filter service.CardFilter
	var err error
	if filter.MinAvgRating, err = queryFloat(r, "minAvgRating"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.MaxAvgRating, err = queryFloat(r, "maxAvgRating"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.Shuffle, err = queryBool(r, "shuffle"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.cards.ListCards(r.Context(), user.ID, subjectID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// CreateCard handles POST /subjects/{id}/cards. It answers 201 for a new
// card and 200 when a card with the same front and back already existed.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.cards.CreateCard(r.Context(), user.ID, subjectID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	shared.RespondWithJSON(w, r, status, CardResponse{
		CardDetails:    result.Card,
		AlreadyExisted: result.AlreadyExisted,
	})
}

// CreateCards handles POST /subjects/{id}/cards/batch
func (h *CardHandler) CreateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req BatchCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	inputs := make([]service.CardInput, len(req.Cards))
	for i, c := range req.Cards {
		inputs[i] = c.input()
	}

	results, err := h.cards.CreateCards(r.Context(), user.ID, subjectID, inputs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create cards")
		return
	}

	resp := make([]CardResponse, len(results))
	for i, res := range results {
		resp[i] = CardResponse{CardDetails: res.Card, AlreadyExisted: res.AlreadyExisted}
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// GetCard handles GET /cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, cardID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	card, err := h.cards.GetCard(r.Context(), user.ID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardResponse{CardDetails: card})
}

// UpdateCard handles PUT /cards/{id}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, cardID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.UpdateCard(r.Context(), user.ID, cardID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	log.Debug("card updated", slog.String("card_id", cardID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, CardResponse{CardDetails: card})
}

// SetHints handles PATCH /cards/{id}/hints
func (h *CardHandler) SetHints(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, cardID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req HintsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.SetHints(r.Context(), user.ID, cardID, req.HintFront, req.HintBack)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update hints")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardResponse{CardDetails: card})
}

// DeleteCard handles DELETE /cards/{id}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, cardID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	if err := h.cards.DeleteCards(r.Context(), user.ID, []uuid.UUID{cardID}); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	log.Debug("card deleted", slog.String("card_id", cardID.String()))
	shared.RespondNoContent(w)
}

// DeleteCards handles DELETE /cards with a body listing the ids. Nothing is
// deleted if any id is unknown.
func (h *CardHandler) DeleteCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r, log)
	if !ok {
		return
	}
	var req DeleteCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.cards.DeleteCards(r.Context(), user.ID, req.IDs); err != nil {
		HandleAPIError(w, r, err, "Failed to delete cards")
		return
	}
	shared.RespondNoContent(w)
}

// RateCard handles PATCH and PUT /cards/{id}/rate?rating=N
func (h *CardHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, cardID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	rating, err := parseRating(r.URL.Query().Get("rating"))
	if err != nil {
		log.Debug("invalid rating",
			slog.String("card_id", cardID.String()),
			slog.String("rating", r.URL.Query().Get("rating")))
		HandleAPIError(w, r, err, "")
		return
	}

	history, err := h.ratings.RecordRating(r.Context(), user.ID, cardID, rating)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record rating")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ratingToResponse(history))
}

// parseRating reads the rating query value, which must be an integer in 1..5.
func parseRating(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError("rating", "is required", domain.ErrInvalidRating)
	}
	rating, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("rating", "must be an integer", domain.ErrInvalidRating)
	}
	if err := domain.ValidateRating(rating); err != nil {
		return 0, err
	}
	return rating, nil
}
