package perception

import (
	"fmt"

	"marketnerd/internal/config"
)

// NewClient builds the LLMClient the configuration asks for. Callers that
// can run without a model should treat an error here as degraded mode, not
// fatal.
func NewClient(cfg config.LLMConfig) (LLMClient, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("no API key configured; set GEMINI_API_KEY or OPENAI_API_KEY")
	}

	switch cfg.Provider {
	case config.ProviderGemini, "":
		gc := DefaultGeminiConfig(cfg.APIKey)
		if cfg.Model != "" {
			gc.Model = cfg.Model
		}
		gc.Temperature = cfg.Temperature
		gc.Timeout = cfg.Timeout()
		return NewGeminiClientWithConfig(gc), nil

	case config.ProviderOpenAI:
		oc := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.Model != "" {
			oc.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		oc.Temperature = cfg.Temperature
		oc.Timeout = cfg.Timeout()
		return NewOpenAIClientWithConfig(oc), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
