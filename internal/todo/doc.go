// Package todo stores, loads, and updates the todo list file.
//
// The store file (todo_list.json by default) follows the schema returned by
// BundledSchema:
//
//	{
//	  "schema_version": 1,
//	  "next_id": 3,
//	  "tasks": {
//	    "2": {
//	      "description": "walk dog",
//	      "complete": false,
//	      "created_at": "2026-01-01T00:00:00Z",
//	      "completed_at": null
//	    }
//	  }
//	}
//
// # Identifiers
//
// Task IDs are minted from next_id, which only ever grows. Deleting a task,
// or clearing the whole list, never makes its ID available again.
// next_id is capped at MaxNextID (2^53-1) so every ID is exact as a JSON
// number; once it is reached, Add fails with ErrIDsExhausted.
//
// Descriptions are stored as JSON strings. Invalid UTF-8 in a description
// is replaced with U+FFFD when saving, so callers that need an exact round
// trip must pass valid UTF-8.
//
// # Completion
//
//   - Completing a task sets completed_at to the current time.
//   - Uncompleting a task clears completed_at.
//   - Setting the status a task already has changes nothing.
//   - completed_at is set exactly when complete is true; a file that breaks
//     this is malformed.
//
// # Persistence
//
// Each command runs one load-mutate-save cycle (see Update). Saving writes a
// temporary file next to the store and renames it into place. Initialize
// creates the file exclusively and never overwrites an existing store.
//
// Loading validates the document against the bundled JSON Schema and checks
// that every task ID is below next_id; any failure is reported as
// ErrMalformedData.
//
// # File Format
//
// When writing store files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Keys sorted by encoding/json
package todo
