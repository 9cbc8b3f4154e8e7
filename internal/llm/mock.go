package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests.
type MockClient struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []string
}

// Name implements Client.
func (m *MockClient) Name() string { return "mock" }

// ExtractExpenses records the statement and returns the scripted response.
func (m *MockClient) ExtractExpenses(ctx context.Context, statement string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, statement)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Response, m.Err
}

// Calls returns the statements passed so far.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
