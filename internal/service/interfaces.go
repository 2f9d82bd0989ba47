package service

import (
	"context"

	"github.com/pageza/worldchef/backend/internal/types"
)

// IChatRelay defines the chat relay operation used by the transport layer
type IChatRelay interface {
	Handle(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
}

var _ IChatRelay = (*ChatRelay)(nil)
