package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig controls the exponential backoff policy.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns production defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// RetryClient decorates any LLMClient with exponential backoff and full
// jitter for transient failures. Non-transient errors are returned
// immediately. When the attempt budget is exhausted the last error is
// wrapped with ErrModelUnavailable so callers can distinguish "the
// model is down" from a single bad call.
//
// Thread Safety: RetryClient is safe for concurrent use.
type RetryClient struct {
	inner LLMClient
	cfg   RetryConfig
}

// NewRetryClient wraps inner with the given retry policy.
func NewRetryClient(inner LLMClient, cfg RetryConfig) *RetryClient {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultRetryConfig().MaxDelay
	}
	return &RetryClient{inner: inner, cfg: cfg}
}

// Generate implements the LLMClient interface.
func (r *RetryClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		text, err := r.inner.Generate(ctx, prompt, params)
		if err == nil {
			return text, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		lastErr = err
		modelRetries.Inc()
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.backoffDelay(attempt)
		slog.Warn("Transient LLM failure, backing off",
			"attempt", attempt,
			"max_attempts", r.cfg.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrModelUnavailable, r.cfg.MaxAttempts, lastErr)
}

// backoffDelay computes the delay for the given attempt using full
// jitter: a uniform sample from [0, min(maxDelay, base*2^(attempt-1))].
func (r *RetryClient) backoffDelay(attempt int) time.Duration {
	ceiling := r.cfg.BaseDelay << (attempt - 1)
	if ceiling > r.cfg.MaxDelay || ceiling <= 0 {
		ceiling = r.cfg.MaxDelay
	}
	return time.Duration(rand.Int63n(int64(ceiling) + 1))
}
