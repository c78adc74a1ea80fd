package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashcards-api/internal/api/shared"
	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service"
)

// UserHandler handles account and statistics requests.
type UserHandler struct {
	users  service.UserService
	stats  service.StatsService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, stats service.StatsService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:  users,
		stats:  stats,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users. The route only requires a valid token, since
// the caller has no user yet.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	claims, ok := shared.ClaimsFromContext(r.Context())
	if !ok {
		log.Warn("claims not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	// The body is optional.
	var req RegisterRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), claims, req.Username)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r, log)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me. Deactivating an account locks it out of
// every authenticated route.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.users.SetActive(r.Context(), user.ID, *req.IsActive)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// GetStats handles GET /user-stats
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	stats, err := h.stats.GetUserStats(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
