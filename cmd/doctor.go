package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
)

// doctorCommand reports the effective config and checks the todo list file.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("todo doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	if fs.NArg() > 0 {
		return usageError("unexpected arguments: %v", fs.Args())
	}

	fmt.Println("Todo Doctor")
	fmt.Println("===========")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	for _, key := range config.Keys() {
		fmt.Printf("  %s = %v (%s)\n", key, a.cfg.Value(key), a.cfg.Sources[key])
	}
	if len(a.cfg.Files) == 0 {
		fmt.Println("  Files: none")
	} else {
		for _, f := range a.cfg.Files {
			fmt.Printf("  File: %s\n", f)
		}
	}
	fmt.Println()

	// Todo list file
	path := a.cfg.StoreFile
	fmt.Printf("Todo file: %s\n", path)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Println("  ⚠️  Not found (run 'todo init' to create it)")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	default:
		fmt.Println("  ✅ OK")
		if !a.checkStore(path, *verbose) {
			allOK = false
		}
	}
	fmt.Println()

	// Lock
	fmt.Printf("Lock file: %s\n", todo.LockPath(path))
	if !a.cfg.Lock {
		fmt.Println("  ⚠️  Locking disabled (concurrent changes may be lost)")
	} else if held, err := todo.LockHeld(path); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else if held {
		fmt.Println("  ⚠️  Held by another process")
	} else {
		fmt.Println("  ✅ Free")
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkStore validates the todo list file and, when verbose, lists its tasks.
func (a *app) checkStore(path string, verbose bool) bool {
	result, err := todo.Validate(path)
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		return false
	}
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Println("  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Printf("     - %v\n", e)
		}
		return false
	}
	fmt.Println("  ✅ Valid")

	if verbose {
		fmt.Printf("  Tasks: %d\n", result.Tasks)
		err := todo.View(path, func(s *todo.Store) error {
			for id, t := range s.List() {
				fmt.Printf("    %s\n", ui.FormatTask(ui.PlainStyles(), id, t, false))
			}
			return nil
		})
		if err != nil {
			fmt.Printf("  ❌ Load error: %v\n", err)
			return false
		}
	}
	return true
}
