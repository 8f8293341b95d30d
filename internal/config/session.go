package config

import "time"

// SessionConfig governs the in-memory session registry and its archive.
type SessionConfig struct {
	// TimeoutMinutes is how long an idle session survives before the
	// sweeper expires it.
	TimeoutMinutes int `yaml:"timeout_minutes"`

	// CleanupIntervalMinutes is the sweep cadence.
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`

	// Workers caps concurrently processed session steps.
	Workers int `yaml:"workers"`

	// ArchivePath is the SQLite file finished sessions are written to.
	// Relative paths resolve against the workspace directory.
	ArchivePath string `yaml:"archive_path"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TimeoutMinutes:         30,
		CleanupIntervalMinutes: 5,
		Workers:                4,
		ArchivePath:            "sessions.db",
	}
}

func (c *SessionConfig) normalize() {
	d := DefaultSessionConfig()
	if c.TimeoutMinutes <= 0 {
		c.TimeoutMinutes = d.TimeoutMinutes
	}
	if c.CleanupIntervalMinutes <= 0 {
		c.CleanupIntervalMinutes = d.CleanupIntervalMinutes
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ArchivePath == "" {
		c.ArchivePath = d.ArchivePath
	}
}

func (c SessionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

func (c SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}
