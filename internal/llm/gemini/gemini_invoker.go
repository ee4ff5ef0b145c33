package gemini

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
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Invoker implements port.ModelInvoker using Google's Gemini API.
type Invoker struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewInvoker creates a Gemini-based invoker.
func NewInvoker(cfg *config.ProviderConfig) *Invoker {
	return newInvoker(cfg, cfg.BaseURL)
}

// NewInvokerWithEndpoint creates an invoker pointing at a custom API base (for testing).
func NewInvokerWithEndpoint(cfg *config.ProviderConfig, baseURL string) *Invoker {
	return newInvoker(cfg, baseURL)
}

func newInvoker(cfg *config.ProviderConfig, baseURL string) *Invoker {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if baseURL == "" {
		baseURL = apiBaseURL
	}
	return &Invoker{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (i *Invoker) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = i.model
	}

	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": req.SystemInstruction},
			},
		},
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": req.UserContent},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": req.MaxReplyTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", i.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", i.apiKey)

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, llm.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("gemini", baseErr, llm.RetryAfter(resp.Header, time.Now()))
		}
		return nil, baseErr
	}

	return parseResponse(respBody, model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return &port.CompletionResponse{
		Text:         text.String(),
		ModelUsed:    model,
		FinishReason: resp.Candidates[0].FinishReason,
	}, nil
}
