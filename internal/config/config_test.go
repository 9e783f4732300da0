// Package config tests configuration loading.
package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// isolate points config discovery at empty temporary directories and
// clears TODO_* variables so the host environment cannot leak in.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"TODO_FILE", "TODO_LOCK", "TODO_LOCK_TIMEOUT",
		"TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_LOG_TIMESTAMPS", "TODO_LOG_CALLER",
	} {
		t.Setenv(name, "")
	}
	t.Chdir(work)
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.StoreFile != DefaultStoreFile {
		t.Errorf("StoreFile: got %q, want %q", cfg.StoreFile, DefaultStoreFile)
	}
	if cfg.Lock != DefaultLock {
		t.Errorf("Lock: got %v, want %v", cfg.Lock, DefaultLock)
	}
	if cfg.LockTimeoutSeconds != DefaultLockTimeoutSeconds {
		t.Errorf("LockTimeoutSeconds: got %d, want %d", cfg.LockTimeoutSeconds, DefaultLockTimeoutSeconds)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" {
		t.Errorf("logging defaults: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	_, work := isolate(t)

	cfg, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := filepath.Join(work, DefaultStoreFile)
	if cfg.StoreFile != want {
		t.Errorf("StoreFile: got %q, want %q", cfg.StoreFile, want)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files: got %v, want none", cfg.Files)
	}
	for _, key := range Keys() {
		if cfg.Sources[key] != SourceDefault {
			t.Errorf("Sources[%s] = %q, want default", key, cfg.Sources[key])
		}
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, work := isolate(t)

	writeFile(t, filepath.Join(home, ".todo", "todo.toml"), `store_file = "user.json"
lock_timeout_seconds = 9
log_format = "json"
`)
	writeFile(t, filepath.Join(work, "todo.toml"), `store_file = "project.json"
lock_timeout_seconds = 3
`)
	t.Setenv("TODO_LOCK_TIMEOUT", "7")

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-log-level", "debug", "list"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StoreFile != filepath.Join(work, "project.json") {
		t.Errorf("StoreFile: got %q, want project.json", cfg.StoreFile)
	}
	if cfg.LockTimeoutSeconds != 7 {
		t.Errorf("LockTimeoutSeconds: got %d, want 7 (env)", cfg.LockTimeoutSeconds)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json (user file)", cfg.LogFormat)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug (flag)", cfg.LogLevel)
	}

	wantSources := map[string]Source{
		"store_file":           SourceProjFile,
		"lock_timeout_seconds": SourceEnv,
		"log_format":           SourceUserFile,
		"log_level":            SourceFlag,
		"lock":                 SourceDefault,
	}
	for key, want := range wantSources {
		if got := cfg.Sources[key]; got != want {
			t.Errorf("Sources[%s] = %q, want %q", key, got, want)
		}
	}
	if len(cfg.Files) != 2 {
		t.Errorf("Files: got %v, want user and project files", cfg.Files)
	}
	if args := fs.Args(); len(args) != 1 || args[0] != "list" {
		t.Errorf("remaining args = %v, want [list]", args)
	}
}

func TestLoadXDGUserConfig(t *testing.T) {
	home, work := isolate(t)
	if osUserConfigDir() != filepath.Join(home, ".config") {
		t.Skip("XDG config dir not used on this platform")
	}
	writeFile(t, filepath.Join(home, ".config", "todo", "todo.toml"), `store_file = "xdg.json"`)

	cfg, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreFile != filepath.Join(work, "xdg.json") {
		t.Errorf("StoreFile: got %q, want xdg.json", cfg.StoreFile)
	}
}

func TestLoadHiddenProjectConfig(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".todo.toml"), `lock = false`)

	cfg, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lock {
		t.Error("Lock: got true, want false from .todo.toml")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, "todo.toml"), `store_file = "x.json"
colour = "blue"
`)

	_, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Errorf("error should name the unknown key, got %v", err)
	}
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, "todo.toml"), `store_file = `)

	if _, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	isolate(t)
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	_, err := Load(fs, []string{"-colour", "blue"})
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("Load() error = %v, want ErrUsage", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_FILE", "custom.json")
	t.Setenv("TODO_LOCK", "no")
	t.Setenv("TODO_LOCK_TIMEOUT", "not-a-number")
	t.Setenv("TODO_LOG_LEVEL", "error")
	t.Setenv("TODO_LOG_FORMAT", "logfmt")
	t.Setenv("TODO_LOG_TIMESTAMPS", "yes")
	t.Setenv("TODO_LOG_CALLER", "1")

	cfg := &Config{Sources: map[string]Source{}}
	setDefaults(cfg)
	loadFromEnv(cfg)

	if cfg.StoreFile != "custom.json" {
		t.Errorf("StoreFile: got %q, want custom.json", cfg.StoreFile)
	}
	if cfg.Lock {
		t.Error("Lock: got true, want false")
	}
	if cfg.LockTimeoutSeconds != DefaultLockTimeoutSeconds {
		t.Errorf("LockTimeoutSeconds: got %d, want default for unparsable value", cfg.LockTimeoutSeconds)
	}
	if cfg.Sources["lock_timeout_seconds"] != SourceDefault {
		t.Errorf("Sources[lock_timeout_seconds] = %q, want default", cfg.Sources["lock_timeout_seconds"])
	}
	if cfg.LogLevel != "error" || cfg.LogFormat != "logfmt" {
		t.Errorf("logging: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if !cfg.LogTimestamps || !cfg.LogCaller {
		t.Errorf("LogTimestamps/LogCaller: got %v/%v, want true/true", cfg.LogTimestamps, cfg.LogCaller)
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{Sources: map[string]Source{}}
	setDefaults(cfg)

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	args := []string{"-file", "flag.json", "-lock=false", "-lock-timeout", "0", "-log-caller", "add", "x"}
	if err := parseFlags(cfg, fs, args); err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if cfg.StoreFile != "flag.json" {
		t.Errorf("StoreFile: got %q, want flag.json", cfg.StoreFile)
	}
	if cfg.Lock {
		t.Error("Lock: got true, want false")
	}
	if cfg.LockTimeoutSeconds != 0 {
		t.Errorf("LockTimeoutSeconds: got %d, want 0", cfg.LockTimeoutSeconds)
	}
	if !cfg.LogCaller {
		t.Error("LogCaller: got false, want true")
	}
	for _, key := range []string{"store_file", "lock", "lock_timeout_seconds", "log_caller"} {
		if cfg.Sources[key] != SourceFlag {
			t.Errorf("Sources[%s] = %q, want flag", key, cfg.Sources[key])
		}
	}
	if cfg.Sources["log_level"] != SourceDefault {
		t.Errorf("Sources[log_level] = %q, want default", cfg.Sources["log_level"])
	}
	if got := fs.Args(); len(got) != 2 || got[0] != "add" {
		t.Errorf("remaining args = %v", got)
	}
}

func TestFinalizeConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"warning alias", func(c *Config) { c.LogLevel = "WARNING" }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"negative timeout", func(c *Config) { c.LockTimeoutSeconds = -1 }, "lock_timeout_seconds"},
		{"empty store", func(c *Config) { c.StoreFile = " " }, "store_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{WorkDir: t.TempDir()}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := finalizeConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("finalizeConfig() error = %v", err)
				}
				if !filepath.IsAbs(cfg.StoreFile) {
					t.Errorf("StoreFile %q is not absolute", cfg.StoreFile)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("finalizeConfig() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestFinalizeKeepsAbsoluteStorePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	cfg := &Config{WorkDir: t.TempDir()}
	setDefaults(cfg)
	cfg.StoreFile = abs

	if err := finalizeConfig(cfg); err != nil {
		t.Fatalf("finalizeConfig() error = %v", err)
	}
	if cfg.StoreFile != abs {
		t.Errorf("StoreFile: got %q, want %q", cfg.StoreFile, abs)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("TODO_TEST_DIR", "lists")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/todo.json", filepath.Join(home, "todo.json")},
		{"$TODO_TEST_DIR/todo.json", "lists/todo.json"},
		{"relative.json", "relative.json"},
		{"~user/todo.json", "~user/todo.json"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("example config does not decode: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("example config has unknown keys: %v", undecoded)
	}
	if cfg.StoreFile != DefaultStoreFile || cfg.LockTimeoutSeconds != DefaultLockTimeoutSeconds {
		t.Errorf("example config disagrees with defaults: %+v", cfg)
	}
}

func TestLockTimeout(t *testing.T) {
	cfg := &Config{LockTimeoutSeconds: 3}
	if got := cfg.LockTimeout().Seconds(); got != 3 {
		t.Errorf("LockTimeout() = %vs, want 3s", got)
	}
}

func TestValue(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	for _, key := range Keys() {
		if cfg.Value(key) == nil {
			t.Errorf("Value(%q) = nil", key)
		}
	}
	if cfg.Value("nope") != nil {
		t.Error("Value(nope) should be nil")
	}
}
