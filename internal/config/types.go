package config

import (
	"errors"
	"time"
)

// ErrUsage marks errors caused by invalid command line flags.
var ErrUsage = errors.New("usage error")

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultStoreFile          = "todo_list.json"
	DefaultLock               = true
	DefaultLockTimeoutSeconds = 5
	DefaultLogLevel           = "warn"
	DefaultLogFormat          = "text"
)

// Config holds the full configuration for todo.
type Config struct {
	// Store file location. Relative paths resolve against WorkDir.
	StoreFile string `toml:"store_file"`

	// Advisory locking around load-mutate-save cycles
	Lock               bool `toml:"lock"`
	LockTimeoutSeconds int  `toml:"lock_timeout_seconds"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	WorkDir string `toml:"-"`

	// Sources maps config keys to where their value came from.
	Sources map[string]Source `toml:"-"`

	// Files lists the config files that were read, lowest priority first.
	Files []string `toml:"-"`
}

// LockTimeout returns the lock timeout as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// Keys returns the configurable keys in display order.
func Keys() []string {
	return []string{
		"store_file",
		"lock",
		"lock_timeout_seconds",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Value returns the current value of a config key formatted for display.
func (c *Config) Value(key string) any {
	switch key {
	case "store_file":
		return c.StoreFile
	case "lock":
		return c.Lock
	case "lock_timeout_seconds":
		return c.LockTimeoutSeconds
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return c.LogTimestamps
	case "log_caller":
		return c.LogCaller
	}
	return nil
}
