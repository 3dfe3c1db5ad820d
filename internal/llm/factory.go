package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables the LLM and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(m model.LLMConfig) Config {
	return Config{
		Provider:   m.Provider,
		Model:      m.Model,
		APIKey:     m.APIKey,
		BaseURL:    m.BaseURL,
		Timeout:    m.Timeout,
		MaxTokens:  m.MaxTokens,
		HTTPProxy:  m.HTTPProxy,
		HTTPSProxy: m.HTTPSProxy,
		NoProxy:    m.NoProxy,
	}
}

// WithEnvKey fills a missing API key from the provider's usual
// environment variable.
func WithEnvKey(config Config) Config {
	if config.APIKey != "" {
		return config
	}
	switch strings.ToLower(config.Provider) {
	case "openai":
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return config
}
