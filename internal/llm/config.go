package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

const (
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenAIModel       = "gpt-4"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
	defaultTemperature       = 0.3
	defaultMaxTokens         = 2000
	defaultTimeout           = 120 * time.Second
	defaultSiteURL           = "http://localhost:8080"
	defaultAppName           = "HireVision"
)

// placeholderKeys are values shipped in sample .env files that must never be sent to a provider.
var placeholderKeys = map[string]struct{}{
	"your_api_key_here":            {},
	"your_openai_api_key_here":     {},
	"your_openrouter_api_key_here": {},
	"your_actual_api_key_here":     {},
}

// ConfigInstructions is returned to callers when no provider credentials are configured.
const ConfigInstructions = `AI provider not configured.

To enable AI-powered analysis:
1. Create an API key with OpenAI (https://platform.openai.com/api-keys) or OpenRouter (https://openrouter.ai/keys).
2. Add it to your .env file: OPENAI_API_KEY=<key>, or OPENROUTER_API_KEY=<key> together with LLM_USE_OPENROUTER=true.
3. Restart the worker or submit the request again.`

// ErrNotConfigured matches every *ConfigurationError via errors.Is.
var ErrNotConfigured = errors.New("llm provider not configured")

// ConfigurationError reports missing or placeholder provider credentials.
type ConfigurationError struct {
	Provider string
	Key      string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not configured: %s %s", e.Provider, e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// ProviderConfig is the resolved transport configuration for one call.
type ProviderConfig struct {
	Name         string
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    *int
	ExtraHeaders map[string]string
	Timeout      time.Duration
}

// Resolver yields the provider configuration to use for the next call.
type Resolver interface {
	Resolve(ctx context.Context) (ProviderConfig, error)
}

// EnvResolver re-reads the environment on every Resolve so a provider switch
// takes effect without a restart.
type EnvResolver struct {
	Getenv func(string) string
}

func (r EnvResolver) Resolve(ctx context.Context) (ProviderConfig, error) {
	if err := ctx.Err(); err != nil {
		return ProviderConfig{}, err
	}
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return ResolveProvider(getenv)
}

// StaticResolver always returns the same configuration. Useful for the CLI and tests.
type StaticResolver struct {
	Config ProviderConfig
	Err    error
}

func (r StaticResolver) Resolve(ctx context.Context) (ProviderConfig, error) {
	if r.Err != nil {
		return ProviderConfig{}, r.Err
	}
	return r.Config, nil
}

// ResolveProvider builds the provider configuration selected by LLM_USE_OPENROUTER.
func ResolveProvider(getenv func(string) string) (ProviderConfig, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := ProviderConfig{
		Temperature: parseFloat(getenv("LLM_TEMPERATURE"), defaultTemperature),
		Timeout:     resolveTimeout(getenv),
	}
	if maxTokens := parseInt(getenv("LLM_MAX_TOKENS"), defaultMaxTokens); maxTokens > 0 {
		cfg.MaxTokens = &maxTokens
	}

	keyName := "OPENAI_API_KEY"
	if parseBool(getenv("LLM_USE_OPENROUTER")) {
		keyName = "OPENROUTER_API_KEY"
		cfg.Name = ProviderOpenRouter
		cfg.BaseURL = env("OPENROUTER_BASE_URL", defaultOpenRouterBaseURL)
		cfg.Model = env("OPENROUTER_MODEL", defaultOpenRouterModel)
		cfg.ExtraHeaders = map[string]string{
			"HTTP-Referer": env("OPENROUTER_SITE_URL", defaultSiteURL),
			"X-Title":      env("OPENROUTER_APP_NAME", defaultAppName),
		}
	} else {
		cfg.Name = ProviderOpenAI
		cfg.BaseURL = env("OPENAI_BASE_URL", defaultOpenAIBaseURL)
		cfg.Model = env("OPENAI_MODEL", defaultOpenAIModel)
		cfg.ExtraHeaders = map[string]string{}
	}

	key := strings.TrimSpace(getenv(keyName))
	if key == "" {
		return ProviderConfig{}, &ConfigurationError{Provider: cfg.Name, Key: keyName, Reason: "is empty"}
	}
	if IsPlaceholderKey(key) {
		return ProviderConfig{}, &ConfigurationError{Provider: cfg.Name, Key: keyName, Reason: "is a placeholder value"}
	}
	cfg.APIKey = key
	return cfg, nil
}

// IsPlaceholderKey reports whether key is a known sample value.
func IsPlaceholderKey(key string) bool {
	_, ok := placeholderKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

func resolveTimeout(getenv func(string) string) time.Duration {
	for _, key := range []string{"LLM_TIMEOUT_SECONDS", "OPENAI_TIMEOUT_SECONDS"} {
		if secs := parseInt(getenv(key), 0); secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultTimeout
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func parseFloat(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
