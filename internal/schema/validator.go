// Package schema compiles tool input schemas and validates call arguments against them.
// file: internal/schema/validator.go
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourcePrefix = "mem://tools/"

// Validator holds compiled schemas keyed by name. Compile during setup, then
// Validate may be called from many goroutines.
type Validator struct {
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
	mu       sync.RWMutex
	logger   logging.Logger

	compileDuration time.Duration
}

// NewValidator creates a Validator using JSON Schema draft 2020-12.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	return &Validator{
		compiler: compiler,
		schemas:  make(map[string]*jsonschema.Schema),
		logger:   logger.WithField("component", "schema_validator"),
	}
}

// Compile registers and compiles the schema under name.
func (v *Validator) Compile(name string, schema json.RawMessage) error {
	if name == "" {
		return NewValidationError(ErrSchemaCompileFailed, "Schema name must not be empty", nil)
	}
	if len(bytes.TrimSpace(schema)) == 0 {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.schemas[name]; exists {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("Schema '%s' already compiled", name), nil)
	}

	url := resourcePrefix + name + ".json"
	start := time.Now()
	if err := v.compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("Failed to add schema '%s'", name),
			errors.Wrap(err, "compiler.AddResource failed")).WithContext("schema", name)
	}
	compiled, err := v.compiler.Compile(url)
	if err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("Failed to compile schema '%s'", name),
			errors.Wrap(err, "compiler.Compile failed")).WithContext("schema", name)
	}
	v.compileDuration += time.Since(start)
	v.schemas[name] = compiled
	v.logger.Debug("Compiled input schema.", "schema", name)
	return nil
}

// IsInitialized reports whether at least one schema has been compiled.
func (v *Validator) IsInitialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.schemas) > 0
}

// HasSchema reports whether a schema named name was compiled.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// SchemaNames returns the compiled schema names, sorted.
func (v *Validator) SchemaNames() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.schemas))
	for n := range v.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetCompileDuration returns the total time spent compiling schemas.
func (v *Validator) GetCompileDuration() time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.compileDuration
}

// Validate checks args against the schema registered under name.
// Absent, empty or null arguments are validated as an empty object.
func (v *Validator) Validate(_ context.Context, name string, args json.RawMessage) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return NewValidationError(ErrSchemaNotFound, fmt.Sprintf("No schema compiled for '%s'", name), nil).
			WithContext("schema", name)
	}

	data := bytes.TrimSpace(args)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance interface{}
	if err := dec.Decode(&instance); err != nil {
		verr := NewValidationError(ErrInvalidJSONFormat, "Arguments are not valid JSON", errors.Wrap(err, "json decode failed"))
		verr.Fields = []string{"arguments"}
		return verr.WithContext("schema", name).WithContext("dataPreview", calculatePreview(data))
	}

	start := time.Now()
	err := compiled.Validate(instance)
	elapsed := time.Since(start)
	if err == nil {
		v.logger.Debug("Schema validation successful.", "schema", name, "duration", elapsed)
		return nil
	}

	var valErr *jsonschema.ValidationError
	if errors.As(err, &valErr) {
		converted := convertValidationError(valErr, name, data)
		v.logger.Debug("Schema validation failed.", "schema", name, "fields", converted.Fields, "duration", elapsed)
		return converted
	}
	v.logger.Error("Unexpected error during schema validation.", "schema", name, "error", err)
	return NewValidationError(ErrValidationFailed, "Schema validation failed with unexpected error",
		errors.Wrap(err, "schema.Validate failed unexpectedly")).WithContext("schema", name)
}
