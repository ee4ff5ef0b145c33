// Package providers registers every built-in model provider with the llm
// registry. Import it for side effects.
package providers

import (
	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/llm/claude"
	"docqa/internal/llm/gemini"
	"docqa/internal/llm/ollama"
	"docqa/internal/llm/openai"
	"docqa/internal/port"
)

func init() {
	llm.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return openai.NewInvoker(cfg), nil
	})
	// Databricks serving endpoints speak the OpenAI chat completions protocol.
	llm.RegisterProvider("databricks", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return openai.NewInvoker(cfg), nil
	})
	llm.RegisterProvider("claude", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return claude.NewInvoker(cfg), nil
	})
	llm.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return gemini.NewInvoker(cfg), nil
	})
	llm.RegisterProvider("ollama", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return ollama.NewInvoker(cfg)
	})
}
