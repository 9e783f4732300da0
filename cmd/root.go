// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Exit codes beyond the generic failure code 1.
const (
	ExitUsage      = 2
	ExitCantCreate = 73 // EX_CANTCREAT from sysexits.h
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *log.Logger
	styles ui.Styles
}

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, config.ErrUsage) {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	a := &app{
		cfg:    cfg,
		log:    logging.FromConfig(os.Stderr, cfg),
		styles: ui.StylesFor(os.Stdout),
	}
	a.logConfig()

	// With no command, list the tasks
	subcommand := "list"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}
	a.log.Debug("running command", "command", subcommand, "args", remainingArgs)

	switch subcommand {
	case "init", "i":
		return a.initCommand(remainingArgs)
	case "list", "ls":
		return a.listCommand(remainingArgs)
	case "add", "a":
		return a.addCommand(ctx, remainingArgs)
	case "delete", "d":
		return a.deleteCommand(ctx, remainingArgs)
	case "complete", "c":
		return a.setCompleteCommand(ctx, "complete", true, remainingArgs)
	case "uncomplete", "u":
		return a.setCompleteCommand(ctx, "uncomplete", false, remainingArgs)
	case "clear":
		return a.clearCommand(ctx, remainingArgs)
	case "clean":
		return a.cleanCommand(ctx, remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "schema":
		return schemaCommand(remainingArgs)
	case "config":
		return configCommand(remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return usageError("unknown command: %s", subcommand)
	}
}

// logConfig logs where each non-default setting came from.
func (a *app) logConfig() {
	a.log.Debug("config loaded", "store", a.cfg.StoreFile, "files", a.cfg.Files)
	for _, key := range config.Keys() {
		if src := a.cfg.Sources[key]; src != config.SourceDefault {
			a.log.Debug("config override", "key", key, "value", a.cfg.Value(key), "source", src)
		}
	}
}

func (a *app) updateOptions() todo.UpdateOptions {
	return todo.UpdateOptions{
		Lock:        a.cfg.Lock,
		LockTimeout: a.cfg.LockTimeout(),
	}
}

// update runs fn as one load-mutate-save cycle on the configured store.
func (a *app) update(ctx context.Context, fn todo.MutateFunc) error {
	opts := a.updateOptions()
	a.log.Debug("updating store", "path", a.cfg.StoreFile, "lock", opts.Lock, "timeout", opts.LockTimeout)

	err := todo.Update(ctx, a.cfg.StoreFile, opts, func(s *todo.Store) (bool, error) {
		a.log.Debug("store loaded", "tasks", s.Len(), "next_id", s.NextID())
		mutated, err := fn(s)
		if err == nil && mutated {
			a.log.Debug("saving store", "tasks", s.Len(), "next_id", s.NextID())
		}
		return mutated, err
	})
	return storeError(err)
}

// view loads the configured store for reading.
func (a *app) view(fn func(s *todo.Store) error) error {
	a.log.Debug("loading store", "path", a.cfg.StoreFile)
	return storeError(todo.View(a.cfg.StoreFile, fn))
}

// storeError adds a hint when the store file has not been created yet.
func storeError(err error) error {
	var pe *todo.PathError
	if errors.As(err, &pe) && pe.Kind == todo.ErrNotFound {
		return fmt.Errorf("%w (run 'todo init' to create it)", err)
	}
	return err
}

// initCommand creates a new empty store.
func (a *app) initCommand(args []string) error {
	fs := flag.NewFlagSet("todo init", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	if fs.NArg() > 0 {
		return usageError("unexpected arguments: %v", fs.Args())
	}

	if _, err := todo.Initialize(a.cfg.StoreFile); err != nil {
		return &ExitError{Code: ExitCantCreate, Err: fmt.Errorf("initializing todo list: %w", err)}
	}
	a.log.Info("store created", "path", a.cfg.StoreFile)
	fmt.Printf("Created %s\n", a.cfg.StoreFile)
	return nil
}

// listCommand prints tasks ordered by identifier.
func (a *app) listCommand(args []string) error {
	fs := flag.NewFlagSet("todo list", flag.ContinueOnError)
	all := fs.Bool("all", false, "Show all tasks (default)")
	done := fs.Bool("done", false, "Show only completed tasks")
	pending := fs.Bool("pending", false, "Show only pending tasks")
	verbose := fs.Bool("v", false, "Show timestamps and totals")

	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	if fs.NArg() > 0 {
		return usageError("unexpected arguments: %v", fs.Args())
	}
	if *done && *pending {
		return usageError("-done and -pending are mutually exclusive")
	}
	if *all {
		*done, *pending = false, false
	}

	return a.view(func(s *todo.Store) error {
		shown := 0
		for id, t := range s.List() {
			if (*done && !t.Complete) || (*pending && t.Complete) {
				continue
			}
			fmt.Println(ui.FormatTask(a.styles, id, t, *verbose))
			shown++
		}
		if shown == 0 {
			fmt.Println("No tasks found.")
		}
		if *verbose {
			p, d := s.Counts()
			fmt.Println()
			fmt.Println(a.styles.Muted.Render(fmt.Sprintf("%d pending, %d done, next id %d", p, d, s.NextID())))
		}
		return nil
	})
}

// addCommand adds a task. All arguments are joined into the description.
func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	description := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if description == "" {
		return usageError("add requires a description")
	}
	if !utf8.ValidString(description) {
		return usageError("description is not valid UTF-8")
	}

	var id todo.ID
	err := a.update(ctx, func(s *todo.Store) (bool, error) {
		var addErr error
		id, addErr = s.Add(description)
		return addErr == nil, addErr
	})
	if err != nil {
		return err
	}
	a.log.Info("task added", "id", id)
	fmt.Printf("Added %d: %s\n", id, description)
	return nil
}

// deleteCommand removes a task by identifier.
func (a *app) deleteCommand(ctx context.Context, args []string) error {
	id, err := parseIDArgs("delete", args)
	if err != nil {
		return err
	}

	err = a.update(ctx, func(s *todo.Store) (bool, error) {
		if err := s.Remove(id); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	a.log.Info("task deleted", "id", id)
	fmt.Printf("Deleted %d\n", id)
	return nil
}

// setCompleteCommand marks a task complete or incomplete.
func (a *app) setCompleteCommand(ctx context.Context, name string, complete bool, args []string) error {
	id, err := parseIDArgs(name, args)
	if err != nil {
		return err
	}

	var changed bool
	err = a.update(ctx, func(s *todo.Store) (bool, error) {
		var setErr error
		changed, setErr = s.SetComplete(id, complete)
		return changed, setErr
	})
	if err != nil {
		return err
	}

	switch {
	case !changed && complete:
		fmt.Printf("Task %d is already complete\n", id)
	case !changed:
		fmt.Printf("Task %d is not complete\n", id)
	case complete:
		a.log.Info("task completed", "id", id)
		fmt.Printf("Completed %d\n", id)
	default:
		a.log.Info("task reopened", "id", id)
		fmt.Printf("Uncompleted %d\n", id)
	}
	return nil
}

// clearCommand removes every task. The identifier counter is kept.
func (a *app) clearCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageError("unexpected arguments: %v", args)
	}

	var removed int
	err := a.update(ctx, func(s *todo.Store) (bool, error) {
		removed = s.Clear()
		return removed > 0, nil
	})
	if err != nil {
		return err
	}
	a.log.Info("tasks cleared", "removed", removed)
	fmt.Printf("Removed %d %s\n", removed, plural(removed, "task", "tasks"))
	return nil
}

// cleanCommand removes completed tasks.
func (a *app) cleanCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageError("unexpected arguments: %v", args)
	}

	var removed int
	err := a.update(ctx, func(s *todo.Store) (bool, error) {
		removed = s.Clean()
		return removed > 0, nil
	})
	if err != nil {
		return err
	}
	a.log.Info("completed tasks cleaned", "removed", removed)
	fmt.Printf("Removed %d completed %s\n", removed, plural(removed, "task", "tasks"))
	return nil
}

// tuiCommand launches the interactive browser.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	if fs.NArg() > 0 {
		return usageError("unexpected arguments: %v", fs.Args())
	}

	// The browser owns the terminal, so silence logging while it runs.
	a.log.SetOutput(io.Discard)
	return storeError(ui.RunTUI(ctx, a.cfg.StoreFile, ui.WithUpdateOptions(a.updateOptions())))
}

// schemaCommand prints the JSON Schema of the todo list file.
func schemaCommand(args []string) error {
	if len(args) > 0 {
		return usageError("unexpected arguments: %v", args)
	}
	_, err := os.Stdout.Write(todo.BundledSchema())
	return err
}

// configCommand prints an example config file.
func configCommand(args []string) error {
	if len(args) > 0 {
		return usageError("unexpected arguments: %v", args)
	}
	fmt.Print(config.ExampleConfig())
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("todo version %s\n", Version)
	return nil
}

// parseIDArgs parses the single task identifier argument of a command.
func parseIDArgs(name string, args []string) (todo.ID, error) {
	fs := flag.NewFlagSet("todo "+name, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 0, &ExitError{Code: ExitUsage, Err: err}
	}
	switch fs.NArg() {
	case 0:
		return 0, usageError("%s requires a task id", name)
	case 1:
	default:
		return 0, usageError("unexpected arguments: %v", fs.Args()[1:])
	}

	id, err := todo.ParseID(fs.Arg(0))
	if err != nil {
		return 0, &ExitError{Code: ExitUsage, Err: err}
	}
	return id, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todo - A local todo list kept in a JSON file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init, i            Create a new empty todo list")
	fmt.Fprintln(w, "  list, ls           List tasks (default command)")
	fmt.Fprintln(w, "  add, a <text>      Add a task")
	fmt.Fprintln(w, "  delete, d <id>     Delete a task")
	fmt.Fprintln(w, "  complete, c <id>   Mark a task complete")
	fmt.Fprintln(w, "  uncomplete, u <id> Mark a task incomplete")
	fmt.Fprintln(w, "  clear              Remove all tasks")
	fmt.Fprintln(w, "  clean              Remove completed tasks")
	fmt.Fprintln(w, "  tui                Browse tasks interactively")
	fmt.Fprintln(w, "  doctor             Check config and todo list validity")
	fmt.Fprintln(w, "  schema             Print the JSON Schema of the todo list file")
	fmt.Fprintln(w, "  config             Print an example todo.toml")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w, "  help               Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'list' command):")
	fmt.Fprintln(w, "  -all      Show all tasks (default)")
	fmt.Fprintln(w, "  -done     Show only completed tasks")
	fmt.Fprintln(w, "  -pending  Show only pending tasks")
	fmt.Fprintln(w, "  -v        Show timestamps and totals")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v        List tasks after validating")
}
