package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted LLMClient for tests. Responses are returned
// in order; when the script runs out the last response repeats. An
// optional Fn overrides the scripted behavior entirely.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Errs      []error
	Fn        func(ctx context.Context, prompt string) (string, error)
	Prompts   []string
	calls     int
}

// Generate implements the LLMClient interface.
func (m *MockClient) Generate(ctx context.Context, prompt string, _ GenerationParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	idx := m.calls
	m.calls++

	if m.Fn != nil {
		return m.Fn(ctx, prompt)
	}
	if idx < len(m.Errs) && m.Errs[idx] != nil {
		return "", m.Errs[idx]
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// Calls returns the number of Generate invocations so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
