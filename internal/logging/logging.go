// Package logging configures leveled diagnostic output with charmbracelet/log.
//
// Diagnostics go to stderr so they never mix with command output on stdout.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
)

// DefaultPrefix is prepended to every log line.
const DefaultPrefix = "todo"

// Options holds configuration for a logger.
type Options struct {
	Level      log.Level
	Formatter  log.Formatter
	Timestamps bool
	Caller     bool
	Prefix     string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Level:     log.WarnLevel,
		Formatter: log.TextFormatter,
		Prefix:    DefaultPrefix,
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          opts.Prefix,
	})
}

// FromConfig creates a logger from the logging keys of cfg.
func FromConfig(w io.Writer, cfg *config.Config) *log.Logger {
	if cfg == nil {
		return New(w, DefaultOptions())
	}
	return New(w, Options{
		Level:      ParseLevel(cfg.LogLevel),
		Formatter:  ParseFormatter(cfg.LogFormat),
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
		Prefix:     DefaultPrefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, Options{Level: log.FatalLevel})
}

// ParseLevel parses a level name. Unknown names map to warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter parses a formatter name. Unknown names map to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
