package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Provider represents an AI provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderOllama Provider = "ollama"
)

// ErrEmptyCompletion is returned when the model answers with no choices
var ErrEmptyCompletion = errors.New("model returned no completion")

// ModelConfig contains the configuration for a specific model
type ModelConfig struct {
	Provider    Provider
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Connector is a single-turn chat completion backend built on langchaingo
type Connector struct {
	llm    llms.Model
	config ModelConfig
}

// NewConnector creates a connector for the configured provider
func NewConnector(ctx context.Context, config ModelConfig) (*Connector, error) {
	log.Debug().
		Str("provider", string(config.Provider)).
		Str("model", config.Model).
		Float64("temperature", config.Temperature).
		Msg("Creating new connector")

	var model llms.Model
	var err error
	switch config.Provider {
	case ProviderOpenAI, "":
		opts := []openai.Option{openai.WithToken(config.APIKey)}
		if config.Model != "" {
			opts = append(opts, openai.WithModel(config.Model))
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderGemini:
		opts := []googleai.Option{googleai.WithAPIKey(config.APIKey)}
		if config.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(config.Model))
		}
		model, err = googleai.New(ctx, opts...)
	case ProviderClaude:
		model, err = anthropic.New(anthropic.WithToken(config.APIKey), anthropic.WithModel(config.Model))
	case ProviderOllama:
		serverURL := config.BaseURL
		if serverURL == "" {
			serverURL = "http://localhost:11434"
		}
		model, err = ollama.New(ollama.WithServerURL(serverURL), ollama.WithModel(config.Model))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", config.Provider, err)
	}

	return NewConnectorWithModel(model, config), nil
}

// NewConnectorWithModel wraps an existing langchaingo model
func NewConnectorWithModel(model llms.Model, config ModelConfig) *Connector {
	return &Connector{llm: model, config: config}
}

// Complete sends a system instruction and one human turn and returns the
// text of the first choice.
func (c *Connector) Complete(ctx context.Context, systemInstruction, userText string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemInstruction),
		llms.TextParts(schema.ChatMessageTypeHuman, userText),
	}

	callOptions := []llms.CallOption{
		llms.WithTemperature(c.config.Temperature),
	}
	if c.config.MaxTokens > 0 {
		callOptions = append(callOptions, llms.WithMaxTokens(c.config.MaxTokens))
	}
	if c.config.Model != "" {
		callOptions = append(callOptions, llms.WithModel(c.config.Model))
	}

	resp, err := c.llm.GenerateContent(ctx, messages, callOptions...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}

// GetProvider returns the provider of this connector
func (c *Connector) GetProvider() Provider {
	return c.config.Provider
}

// GetModel returns the model name from the config
func (c *Connector) GetModel() string {
	return c.config.Model
}
