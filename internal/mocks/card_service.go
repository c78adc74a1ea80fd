package mocks

import (
	"context"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/google/uuid"
)

// MockCardService implements service.CardService for testing
type MockCardService struct {
	// Custom behavior functions
	CreateCardFn  func(ctx context.Context, userID, subjectID uuid.UUID, in service.CardInput) (*service.CreateCardResult, error)
	CreateCardsFn func(ctx context.Context, userID, subjectID uuid.UUID, inputs []service.CardInput) ([]service.CreateCardResult, error)
	GetCardFn     func(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardDetails, error)
	ListCardsFn   func(ctx context.Context, userID, subjectID uuid.UUID, filter service.CardFilter) ([]*domain.CardDetails, error)
	UpdateCardFn  func(ctx context.Context, userID, cardID uuid.UUID, in service.CardInput) (*domain.CardDetails, error)
	SetHintsFn    func(ctx context.Context, userID, cardID uuid.UUID, hintFront, hintBack *string) (*domain.CardDetails, error)
	DeleteCardsFn func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error

	// Default return values
	Card         *domain.CardDetails
	DefaultError error
}

var _ service.CardService = (*MockCardService)(nil)

// CreateCard implements the CardService.CreateCard method
func (m *MockCardService) CreateCard(ctx context.Context, userID, subjectID uuid.UUID, in service.CardInput) (*service.CreateCardResult, error) {
	if m.CreateCardFn != nil {
		return m.CreateCardFn(ctx, userID, subjectID, in)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return &service.CreateCardResult{Card: m.Card}, nil
}

// CreateCards implements the CardService.CreateCards method
func (m *MockCardService) CreateCards(ctx context.Context, userID, subjectID uuid.UUID, inputs []service.CardInput) ([]service.CreateCardResult, error) {
	if m.CreateCardsFn != nil {
		return m.CreateCardsFn(ctx, userID, subjectID, inputs)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	results := make([]service.CreateCardResult, len(inputs))
	for i := range inputs {
		results[i] = service.CreateCardResult{Card: m.Card}
	}
	return results, nil
}

// GetCard implements the CardService.GetCard method
func (m *MockCardService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardDetails, error) {
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, userID, cardID)
	}
	return m.Card, m.DefaultError
}

// ListCards implements the CardService.ListCards method
func (m *MockCardService) ListCards(ctx context.Context, userID, subjectID uuid.UUID, filter service.CardFilter) ([]*domain.CardDetails, error) {
	if m.ListCardsFn != nil {
		return m.ListCardsFn(ctx, userID, subjectID, filter)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	if m.Card == nil {
		return []*domain.CardDetails{}, nil
	}
	return []*domain.CardDetails{m.Card}, nil
}

// UpdateCard implements the CardService.UpdateCard method
func (m *MockCardService) UpdateCard(ctx context.Context, userID, cardID uuid.UUID, in service.CardInput) (*domain.CardDetails, error) {
	if m.UpdateCardFn != nil {
		return m.UpdateCardFn(ctx, userID, cardID, in)
	}
	return m.Card, m.DefaultError
}

// SetHints implements the CardService.SetHints method
func (m *MockCardService) SetHints(ctx context.Context, userID, cardID uuid.UUID, hintFront, hintBack *string) (*domain.CardDetails, error) {
	if m.SetHintsFn != nil {
		return m.SetHintsFn(ctx, userID, cardID, hintFront, hintBack)
	}
	return m.Card, m.DefaultError
}

// DeleteCards implements the CardService.DeleteCards method
func (m *MockCardService) DeleteCards(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if m.DeleteCardsFn != nil {
		return m.DeleteCardsFn(ctx, userID, ids)
	}
	return m.DefaultError
}
