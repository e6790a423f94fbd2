package llm

import (
	"context"
	"errors"
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// ErrModelUnavailable is returned when a backend stays unreachable after
// the retry policy is exhausted. Reasoners treat it as terminal and abort
// the current run.
var ErrModelUnavailable = errors.New("llm: model unavailable")

// ErrTransient marks a failure worth retrying (rate limit, 5xx, timeout).
// Backends wrap their provider-specific errors with it so the retry
// decorator does not need to know every provider's error shape.
var ErrTransient = errors.New("llm: transient failure")

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
