package llm

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRetryAlwaysFailingCallsExactlyN(t *testing.T) {
	original := errors.New("rate limit exceeded")
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		return "", original
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if err != original {
		t.Fatalf("expected original error back, got %v", err)
	}
	if Classify(err) != CategoryRateLimit {
		t.Fatalf("expected rate limit category, got %s", Classify(err))
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	for k := 1; k <= 4; k++ {
		calls := 0
		got, err := Retry(context.Background(), RetryPolicy{MaxRetries: 4, BaseDelay: time.Millisecond}, func(ctx context.Context) (int, error) {
			calls++
			if calls < k {
				return 0, errors.New("boom")
			}
			return calls, nil
		})
		if err != nil {
			t.Fatalf("k=%d: unexpected error %v", k, err)
		}
		if calls != k || got != k {
			t.Fatalf("k=%d: expected %d calls, got %d (result %d)", k, k, calls, got)
		}
	}
}

func TestRetryDelaysDoubleWithoutJitter(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{
		MaxRetries: 4,
		BaseDelay:  time.Millisecond,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			delays = append(delays, delay)
		},
	}
	_, _ = Retry(context.Background(), policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, errors.New("boom")
	})
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
	if !reflect.DeepEqual(delays, want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected one failing call, got calls=%d err=%v", calls, err)
	}
}

func TestRetryShouldRetryStopsEarly(t *testing.T) {
	calls := 0
	permanent := &ConfigurationError{Provider: "openai", Key: "OPENAI_API_KEY", Reason: "is empty"}
	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, ShouldRetry: Retryable}, func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if calls != 1 {
		t.Fatalf("expected no retries for permanent error, got %d calls", calls)
	}
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
