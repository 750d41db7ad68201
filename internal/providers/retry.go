package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultRetryAttempts = 6
	defaultRetryDelay    = 5 * time.Second
)

// RetryProvider wraps a Provider with fixed-backoff retries on transient
// upstream failures (overload/5xx-class signals). Non-transient errors
// surface immediately. Once attempts are exhausted it returns
// ErrModelUnavailable.
type RetryProvider struct {
	inner    Provider
	attempts int
	delay    time.Duration
}

func NewRetryProvider(inner Provider) *RetryProvider {
	return &RetryProvider{
		inner:    inner,
		attempts: defaultRetryAttempts,
		delay:    defaultRetryDelay,
	}
}

// WithPolicy overrides the attempt count and delay. Used by tests and
// callers that want faster exhaustion.
func (p *RetryProvider) WithPolicy(attempts int, delay time.Duration) *RetryProvider {
	if attempts > 0 {
		p.attempts = attempts
	}
	p.delay = delay
	return p
}

func (p *RetryProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var lastErr error
	for i := 0; i < p.attempts; i++ {
		resp, err := p.inner.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
		if i < p.attempts-1 {
			slog.Warn("model overloaded, retrying", "attempt", i+1, "of", p.attempts, "delay", p.delay)
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrModelUnavailable, p.attempts, lastErr)
}

// IsTransient reports whether err looks like a retryable upstream
// condition (overload, rate limit, 5xx).
func IsTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
