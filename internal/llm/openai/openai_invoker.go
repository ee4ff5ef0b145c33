package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/meguminnnnnnnnn/go-openai"

	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/port"
)

const defaultModel = "databricks-meta-llama-3-1-405b-instruct"

// Invoker implements port.ModelInvoker against any OpenAI-compatible
// chat completions endpoint (OpenAI itself, Databricks serving endpoints).
type Invoker struct {
	client *goopenai.Client
	model  string
}

// NewInvoker creates an OpenAI-compatible invoker from a provider config.
// An empty BaseURL targets api.openai.com.
func NewInvoker(cfg *config.ProviderConfig) *Invoker {
	return NewInvokerWithEndpoint(cfg, cfg.BaseURL)
}

// NewInvokerWithEndpoint creates an invoker pointing at a custom base URL (for testing).
func NewInvokerWithEndpoint(cfg *config.ProviderConfig, baseURL string) *Invoker {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Invoker{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (i *Invoker) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = i.model
	}

	resp, err := i.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: req.UserContent},
		},
		MaxTokens: req.MaxReplyTokens,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("openai", err, 0)
		}
		return nil, fmt.Errorf("calling chat completions API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	return &port.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		ModelUsed:    model,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}
