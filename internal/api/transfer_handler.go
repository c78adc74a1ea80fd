package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashcards-api/internal/api/shared"
	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service/export"
	"github.com/flashdeck/flashcards-api/internal/service/upload"
	"github.com/google/uuid"
)

// uploadFormField is the multipart field carrying the CSV file.
const uploadFormField = "file"

// multipartMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const multipartMemory = 1 << 20

// ErrUploadTooLarge indicates an upload over the configured size limit.
var ErrUploadTooLarge = domain.NewValidationError("file", "exceeds the maximum upload size", domain.ErrContentTooLong)

// errMissingFile indicates a multipart request without the file field.
var errMissingFile = domain.NewValidationError(uploadFormField, "is required", domain.ErrEmptyContent)

// TransferHandler handles CSV export and import.
type TransferHandler struct {
	exports  export.ExportService
	uploads  upload.UploadService
	maxBytes int64
	logger   *slog.Logger
}

// NewTransferHandler creates a new TransferHandler. maxBytes caps the size of
// an upload request body.
func NewTransferHandler(
	exports export.ExportService,
	uploads upload.UploadService,
	maxBytes int64,
	logger *slog.Logger,
) *TransferHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TransferHandler")
	}
	return &TransferHandler{
		exports:  exports,
		uploads:  uploads,
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "transfer_handler")),
	}
}

// ExportSubject handles GET /export/subject/{id}
func (h *TransferHandler) ExportSubject(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, h.exports.ExportSubject)
}

// ExportDeck handles GET /export/deck/{id}
func (h *TransferHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, h.exports.ExportDeck)
}

func (h *TransferHandler) serveExport(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, userID, id uuid.UUID, format export.Format) (*export.File, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, id, ok := handleUserAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	file, err := run(r.Context(), user.ID, id, format)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export cards")
		return
	}

	log.Debug("serving export",
		slog.String("file", file.Name),
		slog.Int("records", file.Records))
	shared.RespondWithFile(w, r, file.Name, file.ContentType, file.Data)
}

// Upload handles POST /upload/{subjectId}. The multipart field "file" holds
// the CSV. The response lists saved cards, duplicate rows and skipped rows.
func (h *TransferHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, subjectID, ok := handleUserAndPathUUID(w, r, "subjectId", log)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("upload too large", slog.Int64("limit", tooLarge.Limit))
			HandleAPIError(w, r, ErrUploadTooLarge, "")
			return
		}
		HandleAPIError(w, r, domain.NewValidationError("body", "must be multipart/form-data", domain.ErrInvalidFormat), "")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart files", slog.String("error", err.Error()))
		}
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		HandleAPIError(w, r, errMissingFile, "")
		return
	}
	defer func() { _ = file.Close() }()

	log.Debug("processing upload",
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("subject_id", subjectID.String()))

	result, err := h.uploads.Upload(r.Context(), user.ID, subjectID, file)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to process upload")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
