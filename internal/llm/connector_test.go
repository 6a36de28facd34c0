package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

type recordingModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.resp, m.err
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestConnector_Complete(t *testing.T) {
	model := &recordingModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "Fact. Confidence: High"}}}}
	connector := NewConnectorWithModel(model, ModelConfig{Provider: ProviderOpenAI, Model: "gpt-4", Temperature: 0.3, MaxTokens: 256})

	got, err := connector.Complete(context.Background(), "be a fact checker", "the sky is green")

	require.NoError(t, err)
	assert.Equal(t, "Fact. Confidence: High", got)
	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "be a fact checker"}, model.messages[0].Parts[0])
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "the sky is green"}, model.messages[1].Parts[0])
	assert.Equal(t, 0.3, model.options.Temperature)
	assert.Equal(t, 256, model.options.MaxTokens)
	assert.Equal(t, "gpt-4", model.options.Model)
	assert.Equal(t, "gpt-4", connector.GetModel())
	assert.Equal(t, ProviderOpenAI, connector.GetProvider())
}

func TestConnector_NoChoices(t *testing.T) {
	connector := NewConnectorWithModel(&recordingModel{resp: &llms.ContentResponse{}}, ModelConfig{})

	_, err := connector.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewConnector_UnsupportedProvider(t *testing.T) {
	_, err := NewConnector(context.Background(), ModelConfig{Provider: "watson"})
	assert.Error(t, err)
}
