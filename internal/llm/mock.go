package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests. Respond receives the full
// request and returns the canned output; nil Respond echoes the prompt.
type MockClient struct {
	Respond func(req Request) (string, error)

	mu       sync.Mutex
	requests []Request
}

func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Respond == nil {
		return req.Prompt, nil
	}
	return m.Respond(req)
}

func (m *MockClient) Model() string {
	return "mock"
}

// Requests returns a copy of every request seen so far.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
