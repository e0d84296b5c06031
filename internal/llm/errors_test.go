package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "nil", err: nil, want: CategoryUnknown},
		{name: "typed 429", err: &ProviderError{Provider: "openai", StatusCode: 429, Kind: KindForStatus(429), Err: errors.New("slow down")}, want: CategoryRateLimit},
		{name: "typed 503", err: &ProviderError{Provider: "openai", StatusCode: 503, Kind: KindForStatus(503), Err: errors.New("x")}, want: CategoryServerError},
		{name: "typed 401", err: &ProviderError{Provider: "openrouter", StatusCode: 401, Kind: KindForStatus(401), Err: errors.New("x")}, want: CategoryAuthMissing},
		{name: "wrapped typed", err: fmt.Errorf("attempt: %w", &ProviderError{Provider: "openai", Kind: CategoryTimeout, Err: context.DeadlineExceeded}), want: CategoryTimeout},
		{name: "config", err: &ConfigurationError{Provider: "openai", Key: "OPENAI_API_KEY", Reason: "is empty"}, want: CategoryAuthMissing},
		{name: "deadline", err: context.DeadlineExceeded, want: CategoryTimeout},
		{name: "phrase rate limit", err: errors.New("Rate Limit exceeded"), want: CategoryRateLimit},
		{name: "phrase timeout", err: errors.New("request timed out"), want: CategoryTimeout},
		{name: "phrase connection", err: errors.New("connection refused"), want: CategoryNetwork},
		{name: "phrase server", err: errors.New("Internal Server Error"), want: CategoryServerError},
		{name: "phrase api key", err: errors.New("Invalid API key provided"), want: CategoryAuthMissing},
		{name: "other", err: errors.New("something odd"), want: CategoryUnknown},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindForTransportError(t *testing.T) {
	if got := KindForTransportError(timeoutNetErr{}); got != CategoryTimeout {
		t.Fatalf("expected timeout, got %s", got)
	}
	if got := KindForTransportError(errors.New("dial tcp: refused")); got != CategoryNetwork {
		t.Fatalf("expected network, got %s", got)
	}
}

func TestUserMessagesAreFixed(t *testing.T) {
	seen := map[string]Category{}
	for _, c := range []Category{CategoryRateLimit, CategoryTimeout, CategoryNetwork, CategoryServerError, CategoryAuthMissing, CategoryUnknown} {
		msg := c.UserMessage()
		if msg == "" {
			t.Fatalf("empty message for %s", c)
		}
		if prev, ok := seen[msg]; ok {
			t.Fatalf("message shared by %s and %s", prev, c)
		}
		seen[msg] = c
	}
	if Category("bogus").UserMessage() != CategoryUnknown.UserMessage() {
		t.Fatalf("expected unknown message for unrecognised category")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(context.Canceled) {
		t.Fatalf("cancellation must not be retried")
	}
	if Retryable(&ProviderError{Provider: "openai", StatusCode: 401, Kind: CategoryAuthMissing, Err: errors.New("bad key")}) {
		t.Fatalf("auth failures must not be retried")
	}
	if !Retryable(&ProviderError{Provider: "openai", StatusCode: 502, Kind: CategoryServerError, Err: errors.New("bad gateway")}) {
		t.Fatalf("server errors should be retried")
	}
}
