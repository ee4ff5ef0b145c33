package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/port"
)

type namedInvoker struct{ name string }

func (n *namedInvoker) Complete(_ context.Context, _ port.CompletionRequest) (*port.CompletionResponse, error) {
	return &port.CompletionResponse{ModelUsed: n.name}, nil
}

func registerFake(name string) {
	llm.RegisterProvider(name, func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return &namedInvoker{name: cfg.Provider}, nil
	})
}

func TestNewInvoker_UnknownProvider(t *testing.T) {
	_, err := llm.NewInvoker(&config.ProviderConfig{Provider: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider: nope")
}

func TestNewFromConfig_SingleProvider(t *testing.T) {
	registerFake("fake-primary")

	inv, err := llm.NewFromConfig(&config.LLMConfig{
		Primary: config.ProviderConfig{Provider: "fake-primary"},
	})

	require.NoError(t, err)
	_, isFallback := inv.(*llm.FallbackInvoker)
	assert.False(t, isFallback)
}

func TestNewFromConfig_WithFallbacks(t *testing.T) {
	registerFake("fake-primary")
	registerFake("fake-secondary")

	inv, err := llm.NewFromConfig(&config.LLMConfig{
		Primary:   config.ProviderConfig{Provider: "fake-primary"},
		Secondary: config.ProviderConfig{Provider: "fake-secondary"},
	})

	require.NoError(t, err)
	_, isFallback := inv.(*llm.FallbackInvoker)
	assert.True(t, isFallback)

	resp, err := inv.Complete(context.Background(), port.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fake-primary", resp.ModelUsed)
}
