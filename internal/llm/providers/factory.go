package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/kolobosdimitrios/GANDALF/internal/llm"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Config describes one provider entry in the application config.
type Config struct {
	Type    string   `yaml:"type" mapstructure:"type"`
	APIKey  string   `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string   `yaml:"base_url" mapstructure:"base_url"`
	Models  []string `yaml:"models" mapstructure:"models"`
}

// New builds a provider from its config entry, keyed on Type.
func New(cfg Config) (llm.Provider, error) {
	switch cfg.Type {
	case "anthropic":
		return newAnthropic(cfg)
	case "openai":
		return newOpenAI(cfg)
	case "ollama":
		return newOllama(cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, types.NewError(types.LLM_PROVIDER_NOT_FOUND,
			fmt.Sprintf("unknown provider type %q", cfg.Type))
	}
}

func newAnthropic(cfg Config) (llm.Provider, error) {
	opts := []anthropic.Option{}
	if cfg.APIKey != "" {
		opts = append(opts, anthropic.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED,
			"anthropic client construction failed", err)
	}
	return &langchainProvider{name: "anthropic", client: client, models: cfg.Models}, nil
}

func newOpenAI(cfg Config) (llm.Provider, error) {
	opts := []openai.Option{}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED,
			"openai client construction failed", err)
	}
	return &langchainProvider{name: "openai", client: client, models: cfg.Models}, nil
}

func newOllama(cfg Config) (llm.Provider, error) {
	opts := []ollama.Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	if len(cfg.Models) > 0 {
		opts = append(opts, ollama.WithModel(cfg.Models[0]))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED,
			"ollama client construction failed", err)
	}
	return &langchainProvider{name: "ollama", client: client, models: cfg.Models}, nil
}
