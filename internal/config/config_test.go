package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MARKETNERD_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "MARKETNERD_MODEL", "MARKETNERD_BASE_URL", "MARKETNERD_DEBUG"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 8, cfg.Consultation.MaxQuestions)
	assert.Equal(t, 2, cfg.Consultation.MaxValidationRetries)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout())
	assert.Equal(t, 5*time.Minute, cfg.Session.CleanupInterval())
	assert.Equal(t, 4, cfg.Session.Workers)
	assert.False(t, cfg.Logging.Debug)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: openai
  model: gpt-4o-mini
  base_url: https://example.invalid/v1
consultation:
  max_questions: 3
session:
  timeout_minutes: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Consultation.MaxQuestions)
	assert.Equal(t, 10*time.Minute, cfg.Session.Timeout())
	// Untouched sections keep defaults.
	assert.Equal(t, 4, cfg.Session.Workers)
}

func TestLoad_InvalidProviderRejected(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: cohere\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GEMINI_API_KEY selects gemini when provider unset", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := &Config{LLM: LLMConfig{}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "g-key", cfg.LLM.APIKey)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	})

	t.Run("GEMINI key does not flip an explicit provider", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := &Config{LLM: LLMConfig{Provider: ProviderOpenAI}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "g-key", cfg.LLM.APIKey)
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	})

	t.Run("MARKETNERD_API_KEY wins over provider keys", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("MARKETNERD_API_KEY", "mn-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "mn-key", cfg.LLM.APIKey)
	})

	t.Run("model and debug overrides", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("MARKETNERD_MODEL", "gemini-exp")
		t.Setenv("MARKETNERD_DEBUG", "true")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini-exp", cfg.LLM.Model)
		assert.True(t, cfg.Logging.Debug)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	clearLLMEnv(t)

	dir := t.TempDir()
	path := DefaultConfigPath(dir)

	cfg := Default()
	cfg.Consultation.MaxQuestions = 5
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Consultation.MaxQuestions)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearLLMEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("consultation:\n  max_questions: 3\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got atomic.Int64
	_, err := NewWatcher(ctx, path, func(cfg *Config) {
		got.Store(int64(cfg.Consultation.MaxQuestions))
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("consultation:\n  max_questions: 6\n"), 0o644))

	assert.Eventually(t, func() bool {
		return got.Load() == 6
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcher_SkipsBrokenSaves(t *testing.T) {
	clearLLMEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("consultation:\n  max_questions: 3\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	_, err := NewWatcher(ctx, path, func(*Config) { calls.Add(1) })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("llm: [broken"), 0o644))
	time.Sleep(500 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
