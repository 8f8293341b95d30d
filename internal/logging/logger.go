// Package logging provides categorized file-based logging for marketnerd.
// Logs are written to .marketnerd/logs/ with separate files per category.
// When debug mode is off every call is a silent no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"marketnerd/internal/config"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot         Category = "boot"         // startup and shutdown
	CategorySession      Category = "session"      // session registry, expiry, archive
	CategoryConsultation Category = "consultation" // state machine transitions
	CategoryPerception   Category = "perception"   // router and judge decisions
	CategoryAPI          Category = "api"          // LLM API calls
	CategoryCampaign     Category = "campaign"     // campaign conversion and handoff
	CategoryConfig       Category = "config"       // config loads and hot reloads
)

// Options controls logger behavior. Passed in explicitly by the caller that
// already loaded the config, so this package never reads files itself.
type Options struct {
	Debug bool
	// Dir overrides the log directory; empty means <workspace>/logs.
	Dir string
}

// FromConfig derives Options from the loaded configuration.
func FromConfig(ws string, cfg config.LoggingConfig) Options {
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(config.WorkspaceDir(ws), "logs")
	}
	return Options{Debug: cfg.Debug, Dir: dir}
}

// Logger writes to one category's file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
)

// Initialize sets up the logging directory. Call once at startup. With
// Debug off this is a no-op and all loggers stay silent.
func Initialize(opts Options) error {
	loggersMu.Lock()
	enabled = opts.Debug
	logsDir = opts.Dir
	loggersMu.Unlock()

	if !opts.Debug {
		return nil
	}
	if opts.Dir == "" {
		return fmt.Errorf("log directory required in debug mode")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== marketnerd logging initialized ===")
	boot.Info("Logs directory: %s", opts.Dir)
	return nil
}

// Get returns the logger for a category, creating its file on first use.
// Returns a no-op logger when logging is disabled.
func Get(category Category) *Logger {
	loggersMu.RLock()
	if !enabled || logsDir == "" {
		loggersMu.RUnlock()
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) { l.write("DEBUG", format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.write("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write("WARN", format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.write("ERROR", format, args...) }

func (l *Logger) write(level, format string, args ...interface{}) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// CloseAll flushes and closes every open log file. Call on shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Convenience helpers for the common categories.

func Boot(format string, args ...interface{})         { Get(CategoryBoot).Info(format, args...) }
func Session(format string, args ...interface{})      { Get(CategorySession).Info(format, args...) }
func Consultation(format string, args ...interface{}) { Get(CategoryConsultation).Info(format, args...) }
func Perception(format string, args ...interface{})   { Get(CategoryPerception).Info(format, args...) }
func API(format string, args ...interface{})          { Get(CategoryAPI).Info(format, args...) }
func Campaign(format string, args ...interface{})     { Get(CategoryCampaign).Info(format, args...) }
