// Package service provides application-level services for managing subjects,
// decks, cards, ratings and users.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
)

// Sentinel errors used across service implementations.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError with the failing operation
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to HTTP status codes
var (
	// ErrCrossSubject indicates a card and a deck belong to different subjects.
	// It is a validation error and maps to HTTP 400.
	ErrCrossSubject = fmt.Errorf("%w: cards and deck must belong to the same subject", domain.ErrValidation)

	// ErrNoCardIDs indicates a batch operation was called without card IDs.
	ErrNoCardIDs = domain.NewValidationError("cardIds", "must contain at least one ID", domain.ErrEmptyContent)

	// ErrUnsupportedFormat indicates an export format other than csv or xlsx.
	ErrUnsupportedFormat = domain.NewValidationError("format", "must be csv or xlsx", domain.ErrInvalidFormat)
)

// ServiceError records the operation that failed along with the cause.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// NotFoundError lists the IDs of an entity that could not be found, or that
// belong to another user. It unwraps to store.ErrNotFound.
type NotFoundError struct {
	Entity string
	IDs    []uuid.UUID
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return e.Entity + " not found"
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(ids, ", "))
}

// Unwrap returns store.ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

// IsNotFound reports whether err is any kind of not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
