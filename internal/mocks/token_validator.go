package mocks

import (
	"context"
	"sync"

	"github.com/flashdeck/flashcards-api/internal/service/auth"
)

// MockTokenValidator implements auth.TokenValidator for testing
type MockTokenValidator struct {
	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when ValidateTokenFn isn't set
	Claims *auth.Claims
	Err    error

	mu     sync.Mutex
	tokens []string
}

var _ auth.TokenValidator = (*MockTokenValidator)(nil)

// ValidateToken implements the auth.TokenValidator interface
func (m *MockTokenValidator) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	m.mu.Lock()
	m.tokens = append(m.tokens, tokenString)
	m.mu.Unlock()

	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.Err
}

// Tokens returns the tokens passed to ValidateToken, in call order.
func (m *MockTokenValidator) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}
