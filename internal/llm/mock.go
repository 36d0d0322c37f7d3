package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies. It backs the "mock" provider in
// config as well as tests. Calls and Purposes record every request.
type MockProvider struct {
	mu       sync.Mutex
	queue    []MockResponse
	answer   func(Request) MockResponse
	Calls    []Request
	Purposes []string
}

// NewMockProvider replies with responses in order, then fails with
// ErrProviderUnavailable.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

// NewMockProviderFunc replies to every request with fn, for callers that
// issue requests concurrently.
func NewMockProviderFunc(fn func(Request) MockResponse) *MockProvider {
	return &MockProvider{answer: fn}
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, PurposeFrom(ctx))

	var r MockResponse
	if m.answer != nil {
		r = m.answer(req)
	} else {
		if len(m.queue) == 0 {
			return nil, &ErrProviderUnavailable{}
		}
		r, m.queue = m.queue[0], m.queue[1:]
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", StopReason: StopEnd}, nil
}

// AddResponse queues another reply.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, r)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
