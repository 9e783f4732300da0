package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags

# Todo list file (relative to the working directory, supports ~ and $VAR)
store_file = "todo_list.json"

# Lock the todo list file while a command changes it, so concurrent
# invocations do not overwrite each other's changes
lock = true

# Seconds to wait for the lock before giving up (0 = wait indefinitely)
lock_timeout_seconds = 5

# Logging: debug, info, warn, or error
log_level = "warn"

# Log format: text, json, or logfmt
log_format = "text"

# log_timestamps = false
# log_caller = false
`
}
