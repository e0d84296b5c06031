package llm

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how often and how patiently a call is retried.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts, including the first.
	MaxRetries int
	// BaseDelay is the wait after the first failure; it doubles after each
	// further failure. No jitter is added.
	BaseDelay time.Duration
	// ShouldRetry filters errors; nil retries every error.
	ShouldRetry func(error) bool
	// OnRetry observes each scheduled wait (attempt is zero-based).
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryPolicy mirrors the worker defaults: three attempts, one second base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second}
}

// Retry calls fn until it succeeds or the policy's attempts are used up,
// waiting BaseDelay * 2^attempt between attempts. The last error from fn is
// returned unchanged. Cancelling ctx stops the loop with ctx.Err().
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := policy.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	base := policy.BaseDelay
	if base <= 0 {
		base = time.Nanosecond
	}

	var (
		result  T
		attempt int
		lastErr error
	)
	exp := retry.NewExponential(base)
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := exp.Next()
		if !stop && policy.OnRetry != nil {
			policy.OnRetry(attempt-1, delay, lastErr)
		}
		return delay, stop
	}))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		v, err := fn(ctx)
		if err != nil {
			lastErr = err
			if policy.ShouldRetry != nil && !policy.ShouldRetry(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
