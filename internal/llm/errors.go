package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Category buckets a provider failure for user-facing reporting.
type Category string

const (
	CategoryRateLimit   Category = "rate_limit"
	CategoryTimeout     Category = "timeout"
	CategoryNetwork     Category = "network"
	CategoryServerError Category = "server_error"
	CategoryAuthMissing Category = "auth_missing"
	CategoryUnknown     Category = "unknown"
)

var categoryMessages = map[Category]string{
	CategoryRateLimit:   "The AI service is receiving too many requests. Please wait a moment and try again.",
	CategoryTimeout:     "The AI service took too long to respond. Please try again.",
	CategoryNetwork:     "Could not reach the AI service. Please check your connection and try again.",
	CategoryServerError: "The AI service is temporarily unavailable. Please try again later.",
	CategoryAuthMissing: "The AI service rejected our credentials. Please check the API key configuration.",
	CategoryUnknown:     "An unexpected error occurred while contacting the AI service. Please try again.",
}

// UserMessage returns the fixed message shown to users for the category.
func (c Category) UserMessage() string {
	if msg, ok := categoryMessages[c]; ok {
		return msg
	}
	return categoryMessages[CategoryUnknown]
}

// ProviderError is returned by provider transports for every failed call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       Category
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s http status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindForStatus maps an HTTP status code to a category.
func KindForStatus(status int) Category {
	switch {
	case status == http.StatusTooManyRequests:
		return CategoryRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return CategoryAuthMissing
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return CategoryTimeout
	case status >= 500:
		return CategoryServerError
	default:
		return CategoryUnknown
	}
}

// KindForTransportError categorises an error returned before any HTTP status was read.
func KindForTransportError(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}
	return CategoryNetwork
}

var messagePatterns = []struct {
	category Category
	phrases  []string
}{
	{CategoryRateLimit, []string{"rate limit", "rate_limit", "too many requests", "quota"}},
	{CategoryTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{CategoryAuthMissing, []string{"api key", "api_key", "unauthorized", "authentication", "not configured"}},
	{CategoryServerError, []string{"server error", "internal error", "bad gateway", "service unavailable", "overloaded"}},
	{CategoryNetwork, []string{"connection", "network", "dns", "no such host", "eof"}},
}

// Classify maps err to a category. Typed provider and configuration errors are
// matched first; anything else falls back to case-insensitive phrase matching.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	var perr *ProviderError
	if errors.As(err, &perr) && perr.Kind != "" && perr.Kind != CategoryUnknown {
		return perr.Kind
	}
	if errors.Is(err, ErrNotConfigured) {
		return CategoryAuthMissing
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	msg := strings.ToLower(err.Error())
	for _, p := range messagePatterns {
		for _, phrase := range p.phrases {
			if strings.Contains(msg, phrase) {
				return p.category
			}
		}
	}
	return CategoryUnknown
}

// Retryable reports whether a failed call is worth another attempt.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	switch Classify(err) {
	case CategoryAuthMissing:
		return false
	default:
		return true
	}
}
