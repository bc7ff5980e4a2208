// Package llm defines the provider abstraction the stage executors talk
// to: a chat-completion interface, a thread-safe provider registry, a
// usage tracker, and helpers for digging JSON out of model responses.
package llm

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a provider-agnostic chat completion call.
type CompletionRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Usage reports token consumption for one completion. OutputTokens is a
// pointer because some providers omit it; nil means "not reported", which
// downstream telemetry must preserve rather than coerce to zero.
type Usage struct {
	InputTokens  int  `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
}

// CompletionResponse is the provider's answer plus accounting metadata.
type CompletionResponse struct {
	Content string        `json:"content"`
	Model   string        `json:"model"`
	Usage   Usage         `json:"usage"`
	Elapsed time.Duration `json:"elapsed"`
}

// Provider is a backend capable of chat completions. Implementations must
// be safe for concurrent use.
type Provider interface {
	// Name returns the provider's registry key (e.g. "anthropic").
	Name() string

	// Models lists the model identifiers this provider can serve.
	Models() []string

	// Complete performs a single chat completion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Health verifies the provider is reachable and credentialed.
	Health(ctx context.Context) error
}
