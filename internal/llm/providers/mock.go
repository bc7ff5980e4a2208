package providers

import (
	"context"
	"sync"

	"github.com/kolobosdimitrios/GANDALF/internal/llm"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// MockProvider serves scripted responses in enqueue order and records
// every request it sees. Safe for concurrent use.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []llm.CompletionRequest
}

type mockResponse struct {
	content string
	err     error
}

// NewMock creates an empty mock provider.
func NewMock() *MockProvider {
	return &MockProvider{}
}

// Enqueue scripts a successful response.
func (m *MockProvider) Enqueue(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{content: content})
	return m
}

// EnqueueError scripts a failure.
func (m *MockProvider) EnqueueError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
	return m
}

// Requests returns the completion requests received so far.
func (m *MockProvider) Requests() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Models() []string { return []string{"mock-model"} }

func (m *MockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return nil, types.NewError(types.LLM_COMPLETION_FAILED,
			"mock provider has no scripted response")
	}

	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.err != nil {
		return nil, next.err
	}

	out := 50
	return &llm.CompletionResponse{
		Content: next.content,
		Model:   req.Model,
		Usage:   llm.Usage{InputTokens: 100, OutputTokens: &out},
	}, nil
}

func (m *MockProvider) Health(context.Context) error { return nil }
