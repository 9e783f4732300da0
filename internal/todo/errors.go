package todo

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrReadFailure   = errors.New("read failure")
	ErrWriteFailure  = errors.New("write failure")
	ErrMalformedData = errors.New("malformed data")
	ErrLocked        = errors.New("locked by another process")
	ErrInvalidID     = errors.New("invalid task id")
	ErrIDsExhausted  = errors.New("no task ids left")
)

// PathError records a failed operation on a store file.
type PathError struct {
	Op   string // "init", "load", "save", "lock"
	Path string
	Kind error // one of the Err* kinds
	Err  error // underlying cause, may be nil
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

// Unwrap returns the kind and, when present, the underlying cause.
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// TaskError records an operation that referenced a task that does not exist
// or an identifier that could not be parsed.
type TaskError struct {
	Op   string
	ID   ID
	Raw  string // unparsed input, set when Kind is ErrInvalidID
	Kind error
}

func (e *TaskError) Error() string {
	switch e.Kind {
	case ErrInvalidID:
		return fmt.Sprintf("%s %q: %s", e.Op, e.Raw, e.Kind)
	case ErrIDsExhausted:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: task %d %s", e.Op, e.ID, e.Kind)
}

// Unwrap returns the error kind.
func (e *TaskError) Unwrap() error {
	return e.Kind
}

// KindOf returns the error kind of err, or nil if err did not come from this package.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrAlreadyExists,
		ErrNotFound,
		ErrReadFailure,
		ErrWriteFailure,
		ErrMalformedData,
		ErrLocked,
		ErrInvalidID,
		ErrIDsExhausted,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
