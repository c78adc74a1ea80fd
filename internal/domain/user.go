package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// User validation errors
var (
	// ErrEmptyUserID is returned when a user ID is empty or nil.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrEmptyAuthSubject is returned when the external identity is missing.
	ErrEmptyAuthSubject = errors.New("auth subject cannot be empty")

	// ErrInvalidUsername is returned when a username has the wrong length.
	ErrInvalidUsername = errors.New("username must be between 3 and 50 characters")
)

// User is an account identified by the subject id of an external identity provider.
type User struct {
	ID          uuid.UUID `json:"id"`
	AuthSubject string    `json:"-"`
	Username    string    `json:"username"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewUser creates an active user bound to the given auth subject.
func NewUser(authSubject, username string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:          uuid.New(),
		AuthSubject: strings.TrimSpace(authSubject),
		Username:    strings.TrimSpace(username),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.AuthSubject == "" {
		return NewValidationError("authSubject", "cannot be empty", ErrEmptyAuthSubject)
	}
	n := utf8.RuneCountInString(u.Username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return NewValidationError("username", "must be between 3 and 50 characters", ErrInvalidUsername)
	}
	return nil
}
