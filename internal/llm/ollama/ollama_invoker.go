package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"docqa/internal/config"
	"docqa/internal/port"
)

const defaultBaseURL = "http://localhost:11434"

// Invoker implements port.ModelInvoker against a local Ollama server.
type Invoker struct {
	client *api.Client
	model  string
}

// NewInvoker creates an Ollama invoker. An empty BaseURL targets localhost.
func NewInvoker(cfg *config.ProviderConfig) (*Invoker, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	model := cfg.DefaultModel
	if model == "" {
		model = "llama3.1"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Invoker{
		client: api.NewClient(parsed, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

func (i *Invoker) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = i.model
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: req.SystemInstruction},
			{Role: "user", Content: req.UserContent},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"num_predict": req.MaxReplyTokens,
		},
	}

	var text strings.Builder
	var doneReason string
	err := i.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		if resp.Done {
			doneReason = resp.DoneReason
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("calling ollama chat API: %w", err)
	}

	return &port.CompletionResponse{
		Text:         text.String(),
		ModelUsed:    model,
		FinishReason: doneReason,
	}, nil
}
