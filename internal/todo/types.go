package todo

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"time"
)

// SchemaVersion is the current store file format version.
const SchemaVersion = 1

// FirstID is the identifier minted for the first task of a fresh store.
const FirstID ID = 1

// MaxNextID is the largest value the ID counter may hold, so that every ID
// stays exactly representable as a JSON number. Every minted ID is below it.
const MaxNextID ID = 1<<53 - 1

// now is the clock used for task timestamps. Tests replace it.
var now = func() time.Time {
	return time.Now().UTC()
}

// ID identifies a task within a store. IDs are minted by the store and never reused.
type ID uint64

// String returns the decimal form of the ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a decimal task identifier as typed by a user.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &TaskError{Op: "parse", Raw: s, Kind: ErrInvalidID}
	}
	if n == 0 {
		return 0, &TaskError{Op: "parse", Raw: s, Kind: ErrInvalidID}
	}
	return ID(n), nil
}

// Task represents a single todo item.
type Task struct {
	Description string     `json:"description"`
	Complete    bool       `json:"complete"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Store is the set of tasks plus the counter that mints their identifiers.
//
// A Store lives for one load-mutate-save cycle. Mutations only touch memory;
// callers persist with Save or run the whole cycle through Update.
type Store struct {
	tasks  map[ID]Task
	nextID ID
}

// New returns an empty store whose first minted ID will be FirstID.
func New() *Store {
	return &Store{
		tasks:  make(map[ID]Task),
		nextID: FirstID,
	}
}

// NextID returns the identifier the next Add will mint.
func (s *Store) NextID() ID {
	return s.nextID
}

// Len returns the number of tasks in the store.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Add creates an incomplete task and returns its newly minted ID.
// The description is stored as given; empty and duplicate descriptions are allowed.
// Add fails with ErrIDsExhausted once the counter reaches MaxNextID.
func (s *Store) Add(description string) (ID, error) {
	if s.nextID >= MaxNextID {
		return 0, &TaskError{Op: "add", ID: s.nextID, Kind: ErrIDsExhausted}
	}
	id := s.nextID
	s.tasks[id] = Task{
		Description: description,
		CreatedAt:   now(),
	}
	s.nextID++
	return id, nil
}

// Get returns the task with the given ID.
func (s *Store) Get(id ID) (Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// Remove deletes the task with the given ID. The ID is never minted again.
func (s *Store) Remove(id ID) error {
	if _, ok := s.tasks[id]; !ok {
		return &TaskError{Op: "remove", ID: id, Kind: ErrNotFound}
	}
	delete(s.tasks, id)
	return nil
}

// SetComplete sets the completion flag of a task and reports whether it changed.
//
// Completing a task stamps CompletedAt; uncompleting clears it. Setting the
// value a task already has is a no-op and keeps the existing timestamp.
func (s *Store) SetComplete(id ID, complete bool) (bool, error) {
	t, ok := s.tasks[id]
	if !ok {
		return false, &TaskError{Op: "set complete", ID: id, Kind: ErrNotFound}
	}
	if t.Complete == complete {
		return false, nil
	}

	t.Complete = complete
	if complete {
		ts := now()
		t.CompletedAt = &ts
	} else {
		t.CompletedAt = nil
	}
	s.tasks[id] = t
	return true, nil
}

// Clear removes every task and returns how many were removed.
// The ID counter is kept so earlier IDs are not reissued.
func (s *Store) Clear() int {
	n := len(s.tasks)
	clear(s.tasks)
	return n
}

// Clean removes completed tasks and returns how many were removed.
func (s *Store) Clean() int {
	n := 0
	for id, t := range s.tasks {
		if t.Complete {
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

// IDs returns the task IDs in ascending order.
func (s *Store) IDs() []ID {
	return slices.Sorted(maps.Keys(s.tasks))
}

// List yields tasks in ascending ID order. The sequence may be ranged over
// any number of times; it does not modify the store.
func (s *Store) List() iter.Seq2[ID, Task] {
	return func(yield func(ID, Task) bool) {
		for _, id := range s.IDs() {
			t, ok := s.tasks[id]
			if !ok {
				continue
			}
			if !yield(id, t) {
				return
			}
		}
	}
}

// Counts returns the number of pending and completed tasks.
func (s *Store) Counts() (pending, done int) {
	for _, t := range s.tasks {
		if t.Complete {
			done++
		} else {
			pending++
		}
	}
	return pending, done
}
