// Package mocks provides testify mocks for the relay's collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/worldchef/backend/internal/llm"
	"github.com/pageza/worldchef/backend/internal/types"
)

// MockProvider is a mock implementation of llm.Provider
type MockProvider struct {
	mock.Mock
}

// Name returns a fixed provider name
func (m *MockProvider) Name() string {
	return "mock"
}

// Complete mocks the Complete method
func (m *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockChatRelay is a mock implementation of service.IChatRelay
type MockChatRelay struct {
	mock.Mock
}

// Handle mocks the Handle method
func (m *MockChatRelay) Handle(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatResponse), args.Error(1)
}
