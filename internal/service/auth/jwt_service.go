package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flashdeck/flashcards-api/internal/config"
)

// TokenValidator verifies bearer tokens issued by the identity provider.
type TokenValidator interface {
	// ValidateToken validates the provided token string and extracts the claims.
	// It returns ErrExpiredToken, ErrTokenNotYetValid, ErrMissingSubject or
	// ErrInvalidToken when validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// TokenIssuer mints tokens. Only the HMAC mode can issue tokens, which is
// used for local development and tests.
type TokenIssuer interface {
	GenerateToken(ctx context.Context, claims Claims, lifetime time.Duration) (string, error)
}

// Claims are the identity claims the API relies on.
type Claims struct {
	// Subject is the stable identifier of the user at the identity provider.
	Subject string `json:"sub"`

	// Profile hints used to derive a username when a user is provisioned.
	Nickname          string `json:"nickname,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`

	ExpiresAt time.Time `json:"exp,omitempty"`
}

// UsernameHint returns the first non-empty profile claim, preferring the
// nickname, then preferred_username, then the local part of the email.
func (c *Claims) UsernameHint() string {
	for _, v := range []string{c.Nickname, c.PreferredUsername} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	if local, _, ok := strings.Cut(c.Email, "@"); ok {
		return strings.TrimSpace(local)
	}
	return ""
}

// NewTokenValidator builds the validator selected by cfg: JWKS when an issuer
// URL is configured, HMAC otherwise.
func NewTokenValidator(cfg config.AuthConfig) (TokenValidator, error) {
	if cfg.UsesJWKS() {
		return NewJWKSValidator(cfg)
	}
	svc, err := NewJWTService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HMAC validator: %w", err)
	}
	return svc, nil
}
