package todo

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a contended lock is retried.
const lockRetryDelay = 50 * time.Millisecond

// UpdateOptions controls a load-mutate-save cycle.
type UpdateOptions struct {
	// Lock serializes the cycle against other processes with an advisory
	// lock on LockPath(path).
	Lock bool
	// LockTimeout bounds lock acquisition. Zero waits until ctx is done.
	LockTimeout time.Duration
}

// MutateFunc applies one mutation and reports whether the store changed.
type MutateFunc func(s *Store) (mutated bool, err error)

// LockPath returns the advisory lock file used for the store at path.
func LockPath(path string) string {
	return path + ".lock"
}

// Update loads the store at path, applies fn, and saves the store if fn
// reports a change. Nothing is written when fn fails.
func Update(ctx context.Context, path string, opts UpdateOptions, fn MutateFunc) error {
	if opts.Lock {
		// No lock file is left behind for a store that was never initialized.
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return &PathError{Op: "load", Path: path, Kind: ErrNotFound}
		}
		unlock, err := lock(ctx, path, opts.LockTimeout)
		if err != nil {
			return err
		}
		defer unlock()
	}

	s, err := Load(path)
	if err != nil {
		return err
	}

	mutated, err := fn(s)
	if err != nil {
		return err
	}
	if !mutated {
		return nil
	}
	return s.Save(path)
}

// View loads the store at path and passes it to fn without saving.
func View(path string, fn func(s *Store) error) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	return fn(s)
}

// LockHeld reports whether another process holds the advisory lock for
// the store at path.
func LockHeld(path string) (bool, error) {
	if _, err := os.Stat(LockPath(path)); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	fl := flock.New(LockPath(path))
	locked, err := fl.TryLock()
	if err != nil {
		return false, &PathError{Op: "lock", Path: path, Kind: ErrReadFailure, Err: err}
	}
	if locked {
		_ = fl.Unlock()
		return false, nil
	}
	return true, nil
}

// lock takes the exclusive advisory lock for path.
func lock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(LockPath(path))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &PathError{Op: "lock", Path: path, Kind: ErrLocked}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &PathError{Op: "lock", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if !locked {
		return nil, &PathError{Op: "lock", Path: path, Kind: ErrLocked}
	}

	return func() { _ = fl.Unlock() }, nil
}
