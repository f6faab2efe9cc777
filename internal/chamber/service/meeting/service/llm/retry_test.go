package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ErrorKindUnknown},
		{name: "context canceled", err: context.Canceled, want: ErrorKindCancelled},
		{name: "wrapped cancellation", err: fmt.Errorf("call failed: %w", context.Canceled), want: ErrorKindCancelled},
		{name: "context deadline", err: context.DeadlineExceeded, want: ErrorKindTimeout},
		{name: "http 429", err: errors.New("request failed with status 429"), want: ErrorKindRateLimit},
		{name: "rate limit phrase", err: errors.New("Rate limit exceeded, slow down"), want: ErrorKindRateLimit},
		{name: "quota", err: errors.New("monthly quota exhausted"), want: ErrorKindRateLimit},
		{name: "http 401", err: errors.New("401 Unauthorized"), want: ErrorKindAuth},
		{name: "bad api key", err: errors.New("Invalid API key provided"), want: ErrorKindAuth},
		{name: "timeout phrase", err: errors.New("i/o timeout on read"), want: ErrorKindTimeout},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: ErrorKindNetwork},
		{name: "unexpected eof", err: errors.New("unexpected EOF"), want: ErrorKindNetwork},
		{name: "http 503", err: errors.New("503 Service Unavailable"), want: ErrorKindServer},
		{name: "overloaded", err: errors.New("the model is overloaded"), want: ErrorKindServer},
		{name: "http 400", err: errors.New("400 Bad Request"), want: ErrorKindInvalidRequest},
		{name: "context window", err: errors.New("maximum context length is 128000 tokens"), want: ErrorKindInvalidRequest},
		{name: "anything else", err: errors.New("flux capacitor misaligned"), want: ErrorKindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestErrorKindRetryable(t *testing.T) {
	retryable := []ErrorKind{ErrorKindRateLimit, ErrorKindTimeout, ErrorKindNetwork, ErrorKindServer}
	for _, k := range retryable {
		assert.True(t, k.Retryable(), string(k))
	}
	terminal := []ErrorKind{ErrorKindAuth, ErrorKindInvalidRequest, ErrorKindCancelled, ErrorKindUnknown}
	for _, k := range terminal {
		assert.False(t, k.Retryable(), string(k))
	}
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	policy := DefaultRetryPolicy()
	for attempt := 1; attempt <= 10; attempt++ {
		for i := 0; i < 50; i++ {
			d := policy.Backoff(attempt)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, policy.MaxDelay)
		}
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), DefaultRetryPolicy(), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	authErr := errors.New("401 unauthorized")
	calls := 0
	_, err := Retry(context.Background(), DefaultRetryPolicy(), func(context.Context) (string, error) {
		calls++
		return "", authErr
	})
	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls, "auth failures never retry")
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	calls := 0
	got, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("503 service unavailable")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	serverErr := errors.New("502 bad gateway")
	calls := 0
	_, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		return 0, serverErr
	})
	assert.ErrorIs(t, err, serverErr)
	assert.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Retry(ctx, policy, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancelled during backoff, no further attempts")
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("429 too many requests")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
