package config

import "flag"

// flagKeys maps global flag names to the config keys they set.
var flagKeys = map[string]string{
	"file":           "store_file",
	"lock":           "lock",
	"lock-timeout":   "lock_timeout_seconds",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs, parses args, and records
// which config keys were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.StoreFile, "file", cfg.StoreFile, "Path to the todo list file")

	// Locking
	fs.BoolVar(&cfg.Lock, "lock", cfg.Lock, "Lock the todo list file while changing it")
	fs.IntVar(&cfg.LockTimeoutSeconds, "lock-timeout", cfg.LockTimeoutSeconds, "Seconds to wait for the lock (0 = wait indefinitely)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller information in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				cfg.Sources[key] = SourceFlag
			}
		})
	}
	return nil
}
