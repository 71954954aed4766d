package chat

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/JaimeStill/lectern/internal/config"
)

// PromptMessage is one message in a completion request.
type PromptMessage struct {
	Role    Role
	Content string
}

// CompletionRequest carries a full prompt to a model endpoint.
type CompletionRequest struct {
	Model    config.ModelConfig
	System   string
	Messages []PromptMessage
}

// CompletionResult is the model's reply plus usage accounting.
type CompletionResult struct {
	Content    string
	TokensUsed int
}

// Completer executes completion requests against a model endpoint.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// defaultBaseURLs maps provider names to their OpenAI-compatible endpoints.
// A model config with an explicit base_url bypasses this table.
var defaultBaseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"mistral":    "https://api.mistral.ai/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"ollama":     "http://localhost:11434/v1",
}

type openAICompleter struct{}

// NewCompleter creates a Completer backed by OpenAI-compatible endpoints.
func NewCompleter() Completer {
	return &openAICompleter{}
}

func (c *openAICompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	client, err := clientFor(req.Model)
	if err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrCompletionFailed)
	}

	return &CompletionResult{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func clientFor(model config.ModelConfig) (*openai.Client, error) {
	apiKey := ""
	if model.APIKeyEnv != "" {
		apiKey = os.Getenv(model.APIKeyEnv)
	}

	cfg := openai.DefaultConfig(apiKey)

	baseURL := model.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURLs[model.Provider]
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: no endpoint for provider %s", ErrUnknownModel, model.Provider)
	}
	cfg.BaseURL = baseURL

	return openai.NewClientWithConfig(cfg), nil
}
