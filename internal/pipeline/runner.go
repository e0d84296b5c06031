package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/shared/metrics"
	"hirevision-backend/internal/shared/telemetry"
)

// ProviderSource yields the provider for the next call.
type ProviderSource interface {
	Provider(ctx context.Context) (llm.Provider, llm.ProviderConfig, error)
}

// ProviderFunc adapts a function to ProviderSource.
type ProviderFunc func(ctx context.Context) (llm.Provider, llm.ProviderConfig, error)

func (f ProviderFunc) Provider(ctx context.Context) (llm.Provider, llm.ProviderConfig, error) {
	return f(ctx)
}

// StaticProvider always hands out p.
func StaticProvider(p llm.Provider) ProviderSource {
	return ProviderFunc(func(ctx context.Context) (llm.Provider, llm.ProviderConfig, error) {
		return p, llm.ProviderConfig{Name: p.Name()}, nil
	})
}

const emptyReplyMessage = "Failed to get response from AI service after multiple attempts"

// Runner performs the provider half of every orchestrator: resolve the
// provider, call it under the retry policy and classify failures.
type Runner struct {
	Providers ProviderSource
	Retry     llm.RetryPolicy
	Log       telemetry.Logger
	// JSONMode asks providers for a JSON-only reply. Base gpt-4 rejects it,
	// so it is opt-in.
	JSONMode bool
}

// Complete returns the raw reply text. Errors are always *Failure with
// OutcomeNotConfigured or OutcomeProviderError. No network call is made when
// the provider is not configured.
func (r *Runner) Complete(ctx context.Context, domain string, req llm.Request) (string, error) {
	if r == nil || r.Providers == nil {
		return "", &Failure{Outcome: OutcomeNotConfigured, Category: llm.CategoryAuthMissing, Message: llm.ConfigInstructions, Err: llm.ErrNotConfigured}
	}
	log := telemetry.OrDefault(r.Log)
	provider, cfg, err := r.Providers.Provider(ctx)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", &Failure{Outcome: OutcomeNotConfigured, Category: llm.CategoryAuthMissing, Message: llm.ConfigInstructions, Err: err}
		}
		return "", &Failure{Outcome: OutcomeProviderError, Category: llm.Classify(err), Message: llm.Classify(err).UserMessage(), Err: err}
	}

	policy := r.Retry
	if policy.ShouldRetry == nil {
		policy.ShouldRetry = llm.Retryable
	}
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Info("llm.retry", map[string]any{
			"domain":   domain,
			"provider": provider.Name(),
			"model":    cfg.Model,
			"attempt":  attempt + 1,
			"delay_ms": delay.Milliseconds(),
			"category": string(llm.Classify(err)),
		})
	}

	if r.JSONMode {
		req.JSONMode = true
	}
	text, err := llm.Retry(ctx, policy, func(ctx context.Context) (string, error) {
		return provider.Complete(ctx, req)
	})
	if err != nil {
		category := llm.Classify(err)
		return "", &Failure{Outcome: OutcomeProviderError, Category: category, Message: category.UserMessage(), Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Failure{Outcome: OutcomeProviderError, Category: llm.CategoryUnknown, Message: emptyReplyMessage}
	}
	return text, nil
}

// AsFailure converts any error into a *Failure; unknown errors become
// OutcomeUnexpectedError.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	category := llm.Classify(err)
	return &Failure{Outcome: OutcomeUnexpectedError, Category: category, Message: category.UserMessage(), Err: err}
}

// RecoveredFailure turns a recovered panic value into an UnexpectedError
// failure, logging the stack.
func RecoveredFailure(log telemetry.Logger, domain string, rec any) *Failure {
	err := fmt.Errorf("panic: %v", rec)
	telemetry.OrDefault(log).Error("pipeline.panic", map[string]any{
		"domain": domain,
		"error":  err.Error(),
		"stack":  string(debug.Stack()),
	})
	return &Failure{Outcome: OutcomeUnexpectedError, Category: llm.CategoryUnknown, Message: llm.CategoryUnknown.UserMessage(), Err: err}
}

// Report logs and counts the terminal state of a run.
func Report(log telemetry.Logger, domain string, outcome Outcome, start time.Time, f *Failure) {
	metrics.IncPipelineOutcome(domain, string(outcome))
	fields := map[string]any{
		"domain":      domain,
		"outcome":     string(outcome),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	l := telemetry.OrDefault(log)
	if f == nil || !outcome.Failed() {
		l.Info("pipeline.outcome", fields)
		return
	}
	if f.Category != "" {
		fields["category"] = string(f.Category)
	}
	if f.Err != nil {
		fields["error"] = f.Err.Error()
	}
	l.Error("pipeline.outcome", fields)
}
