package config

import (
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from TODO_* environment variables.
// Values that do not parse are ignored.
func loadFromEnv(cfg *Config) {
	set := func(key string) {
		if cfg.Sources != nil {
			cfg.Sources[key] = SourceEnv
		}
	}

	if v := os.Getenv("TODO_FILE"); v != "" {
		cfg.StoreFile = v
		set("store_file")
	}
	if v := os.Getenv("TODO_LOCK"); v != "" {
		cfg.Lock = boolFromString(v)
		set("lock")
	}
	if v := os.Getenv("TODO_LOCK_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.LockTimeoutSeconds = i
			set("lock_timeout_seconds")
		}
	}

	// Logging configuration
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv("TODO_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv("TODO_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
