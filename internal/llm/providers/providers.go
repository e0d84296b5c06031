// Package providers turns a resolved ProviderConfig into a concrete llm.Provider.
package providers

import (
	"context"
	"fmt"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/openai"
	"hirevision-backend/internal/llm/openrouter"
	"hirevision-backend/internal/shared/telemetry"
)

// New builds the provider named by cfg.Name.
func New(cfg llm.ProviderConfig, log telemetry.Logger) (llm.Provider, error) {
	opts := []openai.Option{openai.WithLogger(log)}
	switch cfg.Name {
	case llm.ProviderOpenAI, "":
		return openai.NewClient(cfg, opts...)
	case llm.ProviderOpenRouter:
		return openrouter.NewClient(cfg, opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Name)
	}
}

// Source resolves configuration and builds a provider on every call, so a
// changed environment is picked up by the next request.
type Source struct {
	Resolver llm.Resolver
	Log      telemetry.Logger
	// Build defaults to New.
	Build func(llm.ProviderConfig, telemetry.Logger) (llm.Provider, error)
}

// Provider resolves the current configuration. A *llm.ConfigurationError is
// returned unchanged so callers can detect the not-configured state.
func (s Source) Provider(ctx context.Context) (llm.Provider, llm.ProviderConfig, error) {
	if s.Resolver == nil {
		return nil, llm.ProviderConfig{}, &llm.ConfigurationError{Provider: "llm", Key: "resolver", Reason: "is missing"}
	}
	cfg, err := s.Resolver.Resolve(ctx)
	if err != nil {
		return nil, llm.ProviderConfig{}, err
	}
	build := s.Build
	if build == nil {
		build = New
	}
	p, err := build(cfg, telemetry.OrDefault(s.Log))
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}
