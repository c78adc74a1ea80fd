package mocks

import (
	"context"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/service/auth"
	"github.com/google/uuid"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	ResolveUserFn func(ctx context.Context, claims *auth.Claims) (*domain.User, error)
	RegisterFn    func(ctx context.Context, claims *auth.Claims, username string) (*domain.User, error)
	GetUserFn     func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsersFn   func(ctx context.Context) ([]*domain.User, error)
	SetActiveFn   func(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error)

	// Default return values
	User         *domain.User
	DefaultError error
}

var _ service.UserService = (*MockUserService)(nil)

// ResolveUser implements the UserService.ResolveUser method
func (m *MockUserService) ResolveUser(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	if m.ResolveUserFn != nil {
		return m.ResolveUserFn(ctx, claims)
	}
	return m.User, m.DefaultError
}

// Register implements the UserService.Register method
func (m *MockUserService) Register(ctx context.Context, claims *auth.Claims, username string) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, claims, username)
	}
	return m.User, m.DefaultError
}

// GetUser implements the UserService.GetUser method
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return m.User, m.DefaultError
}

// ListUsers implements the UserService.ListUsers method
func (m *MockUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx)
	}
	if m.User == nil {
		return []*domain.User{}, m.DefaultError
	}
	return []*domain.User{m.User}, m.DefaultError
}

// SetActive implements the UserService.SetActive method
func (m *MockUserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error) {
	if m.SetActiveFn != nil {
		return m.SetActiveFn(ctx, userID, active)
	}
	return m.User, m.DefaultError
}
