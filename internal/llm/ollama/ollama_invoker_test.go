package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/llm/ollama"
	"docqa/internal/port"
)

func TestOllamaInvoker_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "llama3.1", reqBody["model"])
		assert.Equal(t, false, reqBody["stream"])
		opts := reqBody["options"].(map[string]interface{})
		assert.Equal(t, float64(512), opts["num_predict"])

		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"[{\"q\": \"a\"}]"},"done":true,"done_reason":"stop"}` + "\n"))
	}))
	defer server.Close()

	inv, err := ollama.NewInvoker(&config.ProviderConfig{Provider: "ollama", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := inv.Complete(context.Background(), port.CompletionRequest{
		SystemInstruction: "sys",
		UserContent:       "user",
		MaxReplyTokens:    512,
	})

	require.NoError(t, err)
	assert.Equal(t, `[{"q": "a"}]`, resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "llama3.1", resp.ModelUsed)
}

func TestOllamaInvoker_InvalidBaseURL(t *testing.T) {
	_, err := ollama.NewInvoker(&config.ProviderConfig{Provider: "ollama", BaseURL: "://bad"})
	assert.Error(t, err)
}
