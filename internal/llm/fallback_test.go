package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/llm"
	"docqa/internal/port"
	"docqa/mocks"
)

func completion(model string) *port.CompletionResponse {
	return &port.CompletionResponse{Text: `[{"q1": "a"}]`, ModelUsed: model}
}

var testRequest = port.CompletionRequest{
	SystemInstruction: "system",
	UserContent:       "user",
	Model:             "m",
	MaxReplyTokens:    4096,
}

// fallbackRequest is what non-primary providers receive.
var fallbackRequest = port.CompletionRequest{
	SystemInstruction: "system",
	UserContent:       "user",
	MaxReplyTokens:    4096,
}

func TestFallbackInvoker_FirstSucceeds(t *testing.T) {
	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, testRequest).Return(completion("openai"), nil)

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2}, []string{"openai", "claude"})

	resp, err := fi.Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, "openai", resp.ModelUsed)
	p2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackInvoker_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, testRequest).Return(nil, errors.New("boom"))
	p2.On("Complete", mock.Anything, fallbackRequest).Return(completion("claude"), nil)

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2}, []string{"openai", "claude"})

	resp, err := fi.Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, "claude", resp.ModelUsed)
}

func TestFallbackInvoker_AllRateLimited(t *testing.T) {
	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, testRequest).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 60*time.Second))
	p2.On("Complete", mock.Anything, fallbackRequest).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), 30*time.Second))

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2}, []string{"openai", "claude"})

	resp, err := fi.Complete(context.Background(), testRequest)

	assert.Nil(t, resp)
	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackInvoker_AllFail_NonRateLimit(t *testing.T) {
	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, testRequest).Return(nil, errors.New("error 1"))
	p2.On("Complete", mock.Anything, fallbackRequest).Return(nil, errors.New("error 2"))

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2}, []string{"openai", "claude"})

	_, err := fi.Complete(context.Background(), testRequest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "error 2")
}

func TestFallbackInvoker_SkipsOpenCircuit(t *testing.T) {
	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, testRequest).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 60*time.Second)).Once()
	p2.On("Complete", mock.Anything, fallbackRequest).Return(completion("claude"), nil)

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2}, []string{"openai", "claude"})

	_, err := fi.Complete(context.Background(), testRequest)
	require.NoError(t, err)

	resp, err := fi.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "claude", resp.ModelUsed)
	p1.AssertNumberOfCalls(t, "Complete", 1)
	p2.AssertNumberOfCalls(t, "Complete", 2)
}

func TestFallbackInvoker_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, testRequest).Return(nil, context.Canceled)

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2}, []string{"openai", "claude"})

	_, err := fi.Complete(ctx, testRequest)

	assert.ErrorIs(t, err, context.Canceled)
	p2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackInvoker_SecondaryUsesOwnDefaultModel(t *testing.T) {
	var models []string
	record := func(name string) func(mock.Arguments) {
		return func(args mock.Arguments) {
			models = append(models, name+":"+args.Get(1).(port.CompletionRequest).Model)
		}
	}
	req := testRequest
	req.Model = "databricks-meta-llama-3-1-405b-instruct"

	p1 := new(mocks.MockModelInvoker)
	p2 := new(mocks.MockModelInvoker)
	p3 := new(mocks.MockModelInvoker)
	p1.On("Complete", mock.Anything, mock.Anything).Run(record("openai")).Return(nil, errors.New("boom"))
	p2.On("Complete", mock.Anything, mock.Anything).Run(record("claude")).Return(nil, errors.New("boom"))
	p3.On("Complete", mock.Anything, mock.Anything).Run(record("ollama")).Return(completion("llama3"), nil)

	fi := llm.NewFallbackInvoker([]port.ModelInvoker{p1, p2, p3}, []string{"openai", "claude", "ollama"})

	resp, err := fi.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "llama3", resp.ModelUsed)
	assert.Equal(t, []string{"openai:databricks-meta-llama-3-1-405b-instruct", "claude:", "ollama:"}, models)
	assert.Equal(t, "databricks-meta-llama-3-1-405b-instruct", req.Model)
}
