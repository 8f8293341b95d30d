// Package config loads and validates marketnerd configuration. Values come
// from three layers, lowest priority first: built-in defaults, the YAML file
// in the workspace directory, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WorkspaceDirName is the per-project dot directory holding config, logs and
// the session archive.
const WorkspaceDirName = ".marketnerd"

// Config is the root configuration object.
type Config struct {
	LLM          LLMConfig          `yaml:"llm"`
	Consultation ConsultationConfig `yaml:"consultation"`
	Session      SessionConfig      `yaml:"session"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// Default returns the built-in configuration, usable without any file.
func Default() *Config {
	return &Config{
		LLM:          DefaultLLMConfig(),
		Consultation: DefaultConsultationConfig(),
		Session:      DefaultSessionConfig(),
		Logging:      DefaultLoggingConfig(),
	}
}

// WorkspaceDir returns the dot directory under root, creating nothing.
func WorkspaceDir(root string) string {
	return filepath.Join(root, WorkspaceDirName)
}

// DefaultConfigPath returns the config file location under root.
func DefaultConfigPath(root string) string {
	return filepath.Join(WorkspaceDir(root), "config.yaml")
}

// Load reads the YAML file at path layered over defaults and applies
// environment overrides. A missing file is not an error: defaults plus
// environment are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. Zero values that have safe
// defaults are normalized rather than rejected.
func (c *Config) Validate() error {
	if err := c.LLM.validate(); err != nil {
		return err
	}
	c.Consultation.normalize()
	c.Session.normalize()
	return nil
}

// Save writes the configuration back to path, creating the workspace
// directory when needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.LLM.applyEnvOverrides()
	if v := os.Getenv("MARKETNERD_DEBUG"); v == "1" || v == "true" {
		c.Logging.Debug = true
	}
}
