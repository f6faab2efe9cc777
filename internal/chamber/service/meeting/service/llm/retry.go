package llm

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/kiosk404/roundtable/pkg/logger"
)

// ErrorKind classifies a model call failure for retry decisions and
// client-facing error events.
type ErrorKind string

const (
	ErrorKindRateLimit      ErrorKind = "rate_limit"
	ErrorKindAuth           ErrorKind = "auth"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindNetwork        ErrorKind = "network"
	ErrorKindServer         ErrorKind = "server"
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	ErrorKindCancelled      ErrorKind = "cancelled"
	ErrorKindUnknown        ErrorKind = "unknown"
)

// ClassifyError maps a provider error onto an ErrorKind.
//
// Providers do not share a structured error surface, so this matches on
// status codes and well-known phrases in the error text.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota"):
		return ErrorKindRateLimit
	case strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "authentication"):
		return ErrorKindAuth
	case strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded"):
		return ErrorKindTimeout
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "eof"):
		return ErrorKindNetwork
	case strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "internal server error"):
		return ErrorKindServer
	case strings.Contains(msg, "400") ||
		strings.Contains(msg, "invalid request") ||
		strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "maximum context length"):
		return ErrorKindInvalidRequest
	default:
		return ErrorKindUnknown
	}
}

// Retryable reports whether a failure of this kind is worth another attempt.
// Auth and request-shape failures never recover on retry; cancellation means
// the caller gave up.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorKindRateLimit, ErrorKindTimeout, ErrorKindNetwork, ErrorKindServer:
		return true
	default:
		return false
	}
}

// RetryPolicy holds backoff parameters for transient model failures.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries transient failures up to 3 attempts with
// exponential backoff and full jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Backoff returns the sleep before the given retry attempt (1-origin).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay << (attempt - 1)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	// Full jitter spreads concurrent retries instead of synchronizing them.
	return time.Duration(rand.Int63n(int64(delay) + 1))
}

// Retry runs fn until it succeeds, fails non-retryably, exhausts attempts,
// or the context ends.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		kind := ClassifyError(err)
		if !kind.Retryable() || attempt == attempts {
			return zero, err
		}

		delay := policy.Backoff(attempt)
		logger.Warn("model call failed (%s), retrying in %s (attempt %d/%d): %v",
			kind, delay, attempt, attempts, err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
