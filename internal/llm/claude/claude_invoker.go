package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Invoker implements port.ModelInvoker using the Anthropic Messages API.
type Invoker struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewInvoker creates a Claude-based invoker from a provider config.
func NewInvoker(cfg *config.ProviderConfig) *Invoker {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return newInvoker(cfg, endpoint)
}

// NewInvokerWithEndpoint creates an invoker pointing at a custom API endpoint (for testing).
func NewInvokerWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Invoker {
	return newInvoker(cfg, endpoint)
}

func newInvoker(cfg *config.ProviderConfig, endpoint string) *Invoker {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Invoker{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (i *Invoker) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = i.model
	}

	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": req.MaxReplyTokens,
		"system":     req.SystemInstruction,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": req.UserContent,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", i.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, llm.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("claude", baseErr, llm.RetryAfter(resp.Header, time.Now()))
		}
		return nil, baseErr
	}

	return parseResponse(respBody, model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &port.CompletionResponse{
		Text:         text.String(),
		ModelUsed:    model,
		FinishReason: resp.StopReason,
	}, nil
}
