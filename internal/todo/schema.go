package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL is the resource name the bundled schema is registered under.
const schemaURL = "todo_list.schema.json"

// bundledSchema describes the store file format.
const bundledSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Todo List",
  "type": "object",
  "additionalProperties": false,
  "required": ["schema_version", "next_id", "tasks"],
  "properties": {
    "schema_version": { "type": "integer", "const": 1 },
    "next_id": { "type": "integer", "minimum": 1, "maximum": 9007199254740991 },
    "tasks": {
      "type": "object",
      "additionalProperties": false,
      "patternProperties": {
        "^[1-9][0-9]*$": {
          "type": "object",
          "additionalProperties": false,
          "required": ["description", "complete", "created_at", "completed_at"],
          "properties": {
            "description": { "type": "string" },
            "complete": { "type": "boolean" },
            "created_at": { "type": "string", "format": "date-time" },
            "completed_at": {
              "oneOf": [
                { "type": "null" },
                { "type": "string", "format": "date-time" }
              ]
            }
          }
        }
      }
    }
  }
}`

// BundledSchema returns the JSON Schema of the store file.
func BundledSchema() []byte {
	return []byte(bundledSchema)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(bundledSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidationError is a validation failure at a location in the store document.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult is the outcome of checking a store file.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
	Tasks    int // number of tasks, when the file parsed
}

// Validate checks the store file at path against the bundled schema and the
// identifier invariants, collecting every problem instead of stopping at the first.
func Validate(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &PathError{Op: "validate", Path: path, Kind: ErrNotFound}
		}
		return nil, &PathError{Op: "validate", Path: path, Kind: ErrReadFailure, Err: err}
	}

	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	if err := validateDocument(data); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
		return result, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return result, nil
	}
	s, err := fromDocument(&doc)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return result, nil
	}

	result.Tasks = s.Len()
	if s.Len() == 0 && s.NextID() > FirstID {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("store is empty; next task will be %d", s.NextID()))
	}
	return result, nil
}

// validateDocument checks raw JSON against the bundled schema.
func validateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse store: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("parse store: trailing data after document")
	}

	return schema.Validate(v)
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath converts a JSON Pointer such as "/tasks/3/complete" to
// the dotted form "tasks.3.complete".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	parts := strings.Split(ptr, "/")
	path := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		path = append(path, part)
	}
	return strings.Join(path, ".")
}
