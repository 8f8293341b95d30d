package config

import (
	"fmt"
	"os"
	"time"
)

// Provider identifies which model backend serves completions.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// LLMConfig configures the model backend used by the perception layer.
type LLMConfig struct {
	Provider Provider `yaml:"provider"`
	APIKey   string   `yaml:"api_key"`
	// BaseURL only applies to OpenAI-compatible providers.
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature"`
}

// DefaultLLMConfig targets Gemini with a low temperature suited to
// structured extraction work.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:       ProviderGemini,
		Model:          "gemini-2.0-flash",
		TimeoutSeconds: 60,
		Temperature:    0.1,
	}
}

// Timeout returns the request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether a usable API key is present.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

func (c LLMConfig) validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, "":
		return nil
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
}

// applyEnvOverrides resolves the API key from the environment. Precedence:
// an explicit MARKETNERD_* variable, then the provider-native variables,
// GEMINI over OPENAI. A provider-native key also selects that provider when
// the config left it unset.
func (c *LLMConfig) applyEnvOverrides() {
	if v := os.Getenv("MARKETNERD_API_KEY"); v != "" {
		c.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
		if c.Provider == "" {
			c.Provider = ProviderGemini
		}
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
		if c.Provider == "" {
			c.Provider = ProviderOpenAI
		}
	}
	if v := os.Getenv("MARKETNERD_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("MARKETNERD_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
}
