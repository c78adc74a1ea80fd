package domain

import (
	"strings"
	"unicode/utf8"
)

// Length limits shared by entity validation and request validation.
const (
	MaxCardTextLength    = 100
	MaxHintLength        = 100
	MaxDeckNameLength    = 60
	MaxSubjectNameLength = 100
	MaxLabelLength       = 50
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
)

// checkText trims s and verifies it is non-empty and at most maxLen runes.
func checkText(field, s string, maxLen int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError(field, "cannot be empty", ErrEmptyContent)
	}
	if utf8.RuneCountInString(s) > maxLen {
		return "", NewValidationError(field, "is too long", ErrContentTooLong)
	}
	return s, nil
}

// NormalizeOptional trims s and returns nil when the result is blank.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func checkOptional(field string, s *string, maxLen int) error {
	if s != nil && utf8.RuneCountInString(*s) > maxLen {
		return NewValidationError(field, "is too long", ErrContentTooLong)
	}
	return nil
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
