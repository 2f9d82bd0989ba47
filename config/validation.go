package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, verr := range e {
		msgs = append(msgs, verr.Error())
	}
	return strings.Join(msgs, "\n")
}

// Has reports whether a validation error was recorded for field
func (e ValidationErrors) Has(field string) bool {
	for _, verr := range e {
		if verr.Field == field {
			return true
		}
	}
	return false
}

// ValidateConfig checks that the configuration can serve requests
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	switch cfg.LLMProvider {
	case ProviderAnthropic, ProviderDeepSeek:
		if cfg.LLMAPIKey == "" {
			key := strings.ToUpper(cfg.LLMProvider) + "_API_KEY"
			errs = append(errs, ValidationError{
				Field:   key,
				Message: fmt.Sprintf("%s or %s_FILE must be set", key, key),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "LLM_PROVIDER",
			Message: fmt.Sprintf("unknown provider %q", cfg.LLMProvider),
		})
	}

	if cfg.LLMMaxTokens <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_MAX_TOKENS", Message: "must be a positive integer"})
	}
	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_TIMEOUT", Message: "must be a positive duration"})
	}
	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "must be between 1 and 65535"})
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: fmt.Sprintf("invalid origin %q", origin)})
		}
	}
	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
