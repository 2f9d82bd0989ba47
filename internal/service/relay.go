package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/worldchef/backend/internal/llm"
	"github.com/pageza/worldchef/backend/internal/metrics"
	"github.com/pageza/worldchef/backend/internal/types"
)

// RelayConfig bounds each provider call
type RelayConfig struct {
	MaxTokens int
	Timeout   time.Duration
}

// ChatRelay forwards a conversation to the provider and extracts the recipe
// embedded in the reply. It keeps no per-request state, so one instance serves
// concurrent requests.
type ChatRelay struct {
	provider llm.Provider
	config   RelayConfig
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// NewChatRelay creates a new ChatRelay. collector may be nil.
func NewChatRelay(provider llm.Provider, cfg RelayConfig, logger *zap.Logger, collector *metrics.Collector) *ChatRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatRelay{
		provider: provider,
		config:   cfg,
		logger:   logger.With(zap.String("provider", provider.Name())),
		metrics:  collector,
	}
}

// Handle runs one chat exchange. A failed provider call is returned as a
// *llm.ProviderError and is never retried; a recipe block that cannot be
// parsed only drops the recipe.
func (r *ChatRelay) Handle(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	region := strings.TrimSpace(req.Region)
	if region == "" {
		region = types.RegionAll
	}

	messages := make([]llm.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: types.RoleUser, Content: req.Message})

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := r.provider.Complete(ctx, llm.CompletionRequest{
		System:    BuildSystemPrompt(region),
		Messages:  messages,
		MaxTokens: r.config.MaxTokens,
	})
	elapsed := time.Since(start)
	r.metrics.ObserveProviderCall(r.provider.Name(), elapsed, err)
	if err != nil {
		if !llm.IsProviderError(err) {
			err = &llm.ProviderError{Provider: r.provider.Name(), Err: err}
		}
		r.logger.Error("provider call failed", zap.Error(err), zap.Duration("duration", elapsed))
		return nil, err
	}

	recipe, err := ParseRecipe(raw)
	switch {
	case errors.Is(err, ErrNoRecipeBlock):
		r.metrics.RecordExtraction(metrics.ExtractionAbsent)
	case err != nil:
		r.metrics.RecordExtraction(metrics.ExtractionFailed)
		r.logger.Warn("recipe extraction failed", zap.Error(err))
	default:
		r.metrics.RecordExtraction(metrics.ExtractionParsed)
		r.logger.Debug("recipe extracted", zap.String("recipe_id", recipe.ID), zap.String("name", recipe.Name))
	}

	r.logger.Info("chat handled",
		zap.String("region", region),
		zap.Int("history_turns", len(req.History)),
		zap.Bool("recipe", recipe != nil),
		zap.Duration("duration", elapsed),
	)

	return &types.ChatResponse{
		Response: StripRecipeBlocks(raw),
		Recipe:   recipe,
	}, nil
}
