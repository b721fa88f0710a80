package llm

import (
	"context"
	"errors"
	"sync"
)

// MockGenerator replays queued responses in order and records every request.
// Once the queue is empty the last response is repeated.
type MockGenerator struct {
	mu        sync.Mutex
	Responses []MockResponse
	Calls     []Request
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Text string
	Err  error
}

// NewMockGenerator queues plain text responses.
func NewMockGenerator(texts ...string) *MockGenerator {
	m := &MockGenerator{}
	for _, t := range texts {
		m.Responses = append(m.Responses, MockResponse{Text: t})
	}
	return m
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	idx := len(m.Calls)
	m.Calls = append(m.Calls, req)
	if len(m.Responses) == 0 {
		return "", errors.New("mock generator has no responses")
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	r := m.Responses[idx]
	return r.Text, r.Err
}

// CallCount returns the number of Generate calls so far.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
