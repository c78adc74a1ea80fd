package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashcards-api/internal/api/shared"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service"
)

// SubjectHandler handles subject CRUD requests.
type SubjectHandler struct {
	subjects service.SubjectService
	logger   *slog.Logger
}

// NewSubjectHandler creates a new SubjectHandler
func NewSubjectHandler(subjects service.SubjectService, logger *slog.Logger) *SubjectHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SubjectHandler")
	}
	return &SubjectHandler{
		subjects: subjects,
		logger:   logger.With(slog.String("component", "subject_handler")),
	}
}

// ListSubjects handles GET /subjects
func (h *SubjectHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r, log)
	if !ok {
		return
	}
	subjects, err := h.subjects.ListSubjects(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subjects")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subjects)
}

// CreateSubject handles POST /subjects
func (h *SubjectHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r, log)
	if !ok {
		return
	}
	var req SubjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subject, err := h.subjects.CreateSubject(r.Context(), user.ID, req.settings())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, subject)
}

// GetSubject handles GET /subjects/{id}
func (h *SubjectHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	subject, err := h.subjects.GetSubject(r.Context(), user.ID, subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subject)
}

// UpdateSubject handles PUT /subjects/{id}
func (h *SubjectHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	var req SubjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subject, err := h.subjects.UpdateSubject(r.Context(), user.ID, subjectID, req.settings())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subject)
}

// DeleteSubject handles DELETE /subjects/{id}. The subject's decks, cards and
// histories are deleted with it.
func (h *SubjectHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	if err := h.subjects.DeleteSubject(r.Context(), user.ID, subjectID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete subject")
		return
	}
	shared.RespondNoContent(w)
}
