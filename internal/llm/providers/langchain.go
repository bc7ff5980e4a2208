// Package providers contains the concrete llm.Provider implementations.
// The real backends (anthropic, openai, ollama) all speak through
// langchaingo; the mock provider scripts responses for tests.
package providers

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/kolobosdimitrios/GANDALF/internal/llm"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// langchainProvider adapts any langchaingo model to llm.Provider. The
// backend constructors differ; everything after construction is shared.
type langchainProvider struct {
	name   string
	client llms.Model
	models []string
}

func (p *langchainProvider) Name() string { return p.name }

func (p *langchainProvider) Models() []string {
	out := make([]string, len(p.models))
	copy(out, p.models)
	return out
}

func (p *langchainProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		content = append(content, llms.TextParts(chatType(m.Role), m.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	start := time.Now()
	resp, err := p.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED,
			"completion failed on "+p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, types.NewError(types.LLM_COMPLETION_FAILED,
			p.name+" returned no choices")
	}

	choice := resp.Choices[0]
	return &llm.CompletionResponse{
		Content: choice.Content,
		Model:   req.Model,
		Usage:   usageFromInfo(choice.GenerationInfo),
		Elapsed: time.Since(start),
	}, nil
}

// Health performs a minimal one-token completion to verify reachability
// and credentials.
func (p *langchainProvider) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := p.client.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, "ping")},
		llms.WithMaxTokens(1))
	if err != nil {
		return types.WrapError(types.LLM_COMPLETION_FAILED,
			p.name+" health check failed", err)
	}
	return nil
}

func chatType(role llm.Role) schema.ChatMessageType {
	switch role {
	case llm.RoleSystem:
		return schema.ChatMessageTypeSystem
	case llm.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

// usageFromInfo digs token counts out of GenerationInfo. Key names vary
// by backend; a backend that reports nothing yields a nil OutputTokens,
// which downstream telemetry preserves as "not reported".
func usageFromInfo(info map[string]any) llm.Usage {
	var usage llm.Usage
	if n, ok := intFromInfo(info, "InputTokens", "PromptTokens"); ok {
		usage.InputTokens = n
	}
	if n, ok := intFromInfo(info, "OutputTokens", "CompletionTokens"); ok {
		usage.OutputTokens = &n
	}
	return usage
}

func intFromInfo(info map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v, true
		case int64:
			return int(v), true
		case float64:
			return int(v), true
		}
	}
	return 0, false
}
