package llm

import "fmt"

// NewProvider builds the provider named in cfg.Name.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig("openrouter")
	}
	switch cfg.Name {
	case "", "openrouter":
		return NewOpenRouterProvider(cfg), nil
	case "gemini":
		return NewGeminiProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Name)
	}
}
