package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultFileName is the store file name used when no location is configured.
const DefaultFileName = "todo_list.json"

// filePerm is the permission of newly written store files.
const filePerm = 0644

// document is the on-disk form of a Store.
type document struct {
	SchemaVersion int             `json:"schema_version"`
	NextID        ID              `json:"next_id"`
	Tasks         map[string]Task `json:"tasks"`
}

// Initialize creates a new empty store file at path.
// It fails with ErrAlreadyExists rather than overwrite an existing file.
func Initialize(path string) (*Store, error) {
	s := New()
	data, err := s.Marshal()
	if err != nil {
		return nil, &PathError{Op: "init", Path: path, Kind: ErrWriteFailure, Err: err}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, &PathError{Op: "init", Path: path, Kind: ErrAlreadyExists}
		}
		return nil, &PathError{Op: "init", Path: path, Kind: ErrWriteFailure, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, &PathError{Op: "init", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, &PathError{Op: "init", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, &PathError{Op: "init", Path: path, Kind: ErrWriteFailure, Err: err}
	}

	return s, nil
}

// Load reads and validates the store file at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathError{Op: "load", Path: path, Kind: ErrNotFound}
		}
		return nil, &PathError{Op: "load", Path: path, Kind: ErrReadFailure, Err: err}
	}

	s, err := Unmarshal(data)
	if err != nil {
		return nil, &PathError{Op: "load", Path: path, Kind: ErrMalformedData, Err: err}
	}
	return s, nil
}

// Save writes the store to path, replacing any previous contents.
//
// The data is written to a temporary file in the same directory, synced,
// and renamed over path, so readers see either the old or the new store.
func (s *Store) Save(path string) (err error) {
	data, err := s.Marshal()
	if err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err = tmp.Chmod(filePerm); err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return &PathError{Op: "save", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	return nil
}

// Marshal encodes the store with 2-space indentation and a trailing newline.
func (s *Store) Marshal() ([]byte, error) {
	doc := document{
		SchemaVersion: SchemaVersion,
		NextID:        s.nextID,
		Tasks:         make(map[string]Task, len(s.tasks)),
	}
	for id, t := range s.tasks {
		doc.Tasks[id.String()] = t
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes and validates a store document.
func Unmarshal(data []byte) (*Store, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return fromDocument(&doc)
}

// fromDocument checks the identifier invariants and builds a Store.
func fromDocument(doc *document) (*Store, error) {
	if doc.SchemaVersion != SchemaVersion {
		return nil, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected %d, got %d", SchemaVersion, doc.SchemaVersion),
		}
	}
	if doc.NextID < FirstID {
		return nil, &ValidationError{
			Path: "next_id",
			Err:  fmt.Errorf("must be at least %d, got %d", FirstID, doc.NextID),
		}
	}
	if doc.NextID > MaxNextID {
		return nil, &ValidationError{
			Path: "next_id",
			Err:  fmt.Errorf("must be at most %d, got %d", MaxNextID, doc.NextID),
		}
	}

	s := &Store{
		tasks:  make(map[ID]Task, len(doc.Tasks)),
		nextID: doc.NextID,
	}
	for key, t := range doc.Tasks {
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil || n == 0 || key != strconv.FormatUint(n, 10) {
			return nil, &ValidationError{
				Path: "tasks." + key,
				Err:  fmt.Errorf("key is not a task id"),
			}
		}
		id := ID(n)
		if id >= doc.NextID {
			return nil, &ValidationError{
				Path: "tasks." + key,
				Err:  fmt.Errorf("id is not below next_id %d", doc.NextID),
			}
		}
		if t.Complete != (t.CompletedAt != nil) {
			return nil, &ValidationError{
				Path: "tasks." + key + ".completed_at",
				Err:  fmt.Errorf("must be set exactly when complete is true"),
			}
		}
		s.tasks[id] = t
	}
	return s, nil
}
