package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported LLM providers
const (
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultDeepSeekModel  = "deepseek-chat"
	defaultDeepSeekURL    = "https://api.deepseek.com/v1/chat/completions"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string

	// LLM provider configuration
	LLMProvider  string
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModel     string
	LLMMaxTokens int
	LLMTimeout   time.Duration

	// CORS configuration
	AllowedOrigins []string

	// Redis configuration, optional
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RateLimitPerMinute is the per-client chat quota; 0 disables limiting
	RateLimitPerMinute int
}

// LoadConfig creates a new Config instance with values from environment variables or secrets.
// A missing provider credential is reported as a validation error so the
// process never starts listening without one.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	env := GetEnvironment()
	cfg := &Config{
		Environment:        env,
		ServerHost:         v.GetString("server_host"),
		ServerPort:         v.GetString("server_port"),
		ReadTimeout:        v.GetDuration("server_read_timeout"),
		WriteTimeout:       v.GetDuration("server_write_timeout"),
		ShutdownTimeout:    v.GetDuration("server_shutdown_timeout"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		LLMProvider:        strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
		LLMBaseURL:         v.GetString("llm_base_url"),
		LLMModel:           v.GetString("llm_model"),
		LLMMaxTokens:       v.GetInt("llm_max_tokens"),
		LLMTimeout:         v.GetDuration("llm_timeout"),
		AllowedOrigins:     splitList(v.GetString("cors_allowed_origins")),
		RedisURL:           v.GetString("redis_url"),
		RedisHost:          v.GetString("redis_host"),
		RedisPort:          v.GetString("redis_port"),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if env.IsDevelopment() {
			cfg.LogFormat = "console"
		}
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = readSecret("redis_password")
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic:
		cfg.LLMAPIKey = resolveAPIKey(v, "anthropic_api_key")
		if cfg.LLMModel == "" {
			cfg.LLMModel = defaultAnthropicModel
		}
	case ProviderDeepSeek:
		cfg.LLMAPIKey = resolveAPIKey(v, "deepseek_api_key")
		if cfg.LLMModel == "" {
			cfg.LLMModel = defaultDeepSeekModel
		}
		if cfg.LLMBaseURL == "" {
			cfg.LLMBaseURL = defaultDeepSeekURL
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Address returns the listen address of the HTTP server
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether a Redis connection has been configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "90s")
	v.SetDefault("server_shutdown_timeout", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("llm_provider", ProviderAnthropic)
	v.SetDefault("llm_max_tokens", 2048)
	v.SetDefault("llm_timeout", "60s")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("rate_limit_per_minute", 0)
}

// resolveAPIKey looks for a credential in the environment, then in the file
// named by <KEY>_FILE, then in the Docker secrets directory.
func resolveAPIKey(v *viper.Viper, key string) string {
	if apiKey := strings.TrimSpace(v.GetString(key)); apiKey != "" {
		return apiKey
	}
	if keyFile := v.GetString(key + "_file"); keyFile != "" {
		if data, err := os.ReadFile(keyFile); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return readSecret(key)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
