package apicmder

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pageza/worldchef/backend/config"
	"github.com/pageza/worldchef/backend/internal/llm"
	"github.com/pageza/worldchef/backend/internal/logger"
	"github.com/pageza/worldchef/backend/internal/metrics"
	"github.com/pageza/worldchef/backend/internal/service"
)

// app holds the process-wide resources. They are created once and only read
// afterwards.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector
	relay   *service.ChatRelay
}

// newApp loads the configuration and builds the relay. Logs go to logOutput.
func newApp(logOutput io.Writer) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment.IsDevelopment(),
		Output:      logOutput,
	})

	provider, err := llm.New(cfg, &http.Client{})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	collector := metrics.New()
	relay := service.NewChatRelay(provider, service.RelayConfig{
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	}, log, collector)

	log.Info("chat relay ready",
		zap.String("environment", string(cfg.Environment)),
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.LLMModel),
		zap.Int("max_tokens", cfg.LLMMaxTokens),
	)

	return &app{cfg: cfg, logger: log, metrics: collector, relay: relay}, nil
}
