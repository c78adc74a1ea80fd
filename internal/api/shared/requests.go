package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

// maxJSONBodyBytes caps JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// Global validator instance for reuse. Field errors are reported with their
// JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ErrInvalidBody indicates a request body that is not the expected JSON.
var ErrInvalidBody = domain.NewValidationError("body", "must be valid JSON", domain.ErrInvalidFormat)

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body (EOF)", ErrInvalidBody)
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// ValidateRequest validates v with its Validate method if it has one, and
// with its struct tags otherwise. Failures wrap domain.ErrValidation.
func ValidateRequest(v interface{}) error {
	var err error
	if validator, ok := v.(interface{ Validate() error }); ok {
		err = validator.Validate()
	} else {
		err = validate.Struct(v)
	}
	if err == nil || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}
