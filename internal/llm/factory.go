package llm

import (
	"fmt"

	"docqa/internal/config"
	"docqa/internal/port"
)

// ProviderFactory is a function that creates a ModelInvoker from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.ModelInvoker, error)

// registry of provider factories, populated by init() in the providers package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewInvoker creates a ModelInvoker from a provider config using the registered factory.
func NewInvoker(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the invoker chain described by cfg: the primary
// provider alone, or a FallbackInvoker when secondary/tertiary are set.
func NewFromConfig(cfg *config.LLMConfig) (port.ModelInvoker, error) {
	tiers := []*config.ProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var invokers []port.ModelInvoker
	var names []string
	for _, tier := range tiers {
		if tier == nil {
			continue
		}
		inv, err := NewInvoker(tier)
		if err != nil {
			return nil, err
		}
		invokers = append(invokers, inv)
		names = append(names, tier.Provider)
	}

	if len(invokers) == 1 {
		return invokers[0], nil
	}
	return NewFallbackInvoker(invokers, names), nil
}
