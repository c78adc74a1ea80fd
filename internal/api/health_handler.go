package api

import (
	"net/http"
	"time"

	"github.com/flashdeck/flashcards-api/internal/api/shared"
)

// HealthHandler reports liveness and process uptime.
type HealthHandler struct {
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler counting uptime from started.
func NewHealthHandler(started time.Time) *HealthHandler {
	return &HealthHandler{started: started, now: time.Now}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := h.now().Sub(h.started).Truncate(time.Second)
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: uptime.String(),
	})
}
