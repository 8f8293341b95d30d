package config

// LoggingConfig controls the category file logger.
type LoggingConfig struct {
	// Debug enables file logging; without it the logger is a no-op.
	Debug bool `yaml:"debug"`

	// Dir overrides the log directory. Empty means <workspace>/logs.
	Dir string `yaml:"dir"`

	// MaxFileSizeMB rotates a category file once it grows past this.
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		MaxFileSizeMB: 10,
	}
}
