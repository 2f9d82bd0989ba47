// Package llm holds the adapters for the text-generation providers the chat
// relay can talk to.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pageza/worldchef/backend/config"
)

// Message represents a role-tagged message sent to a provider
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single synchronous completion call
type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Provider generates the assistant reply for a conversation
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderError reports that the upstream call did not succeed
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is, or wraps, a *ProviderError
func IsProviderError(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr)
}

// New builds the provider selected by the configuration. The HTTP client is
// shared by every request and is safe for concurrent use.
func New(cfg *config.Config, httpClient *http.Client) (Provider, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, httpClient), nil
	case config.ProviderDeepSeek:
		return NewDeepSeekProvider(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, httpClient), nil
	default:
		return nil, config.ValidationErrors{{Field: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", cfg.LLMProvider)}}
	}
}
