// file: internal/schema/errors.go
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode defines validation error codes.
type ErrorCode int

// Defined validation error codes.
const (
	ErrSchemaNotFound ErrorCode = iota + 1000
	ErrSchemaCompileFailed
	ErrValidationFailed
	ErrInvalidJSONFormat
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	// Code is the numeric error code.
	Code ErrorCode
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// SchemaPath identifies the part of the schema that was violated.
	SchemaPath string
	// InstancePath identifies the part of the instance that violated the schema.
	InstancePath string
	// Fields lists the top-level argument names involved, sorted.
	Fields []string
	// Context contains additional error context.
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	base := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if len(e.Fields) > 0 {
		base += fmt.Sprintf(" (fields: %s)", strings.Join(e.Fields, ", "))
	}
	if e.SchemaPath != "" {
		base += fmt.Sprintf(" (schema path: %s)", e.SchemaPath)
	}
	if e.Cause != nil {
		base += fmt.Sprintf(": %v", e.Cause)
	}
	return base
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// JSONRPCCode reports the JSON-RPC code used when this error reaches a client.
func (e *ValidationError) JSONRPCCode() int {
	return -32602
}

// WithContext adds context information to the validation error.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError creates a new ValidationError.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

var quotedName = regexp.MustCompile(`'([^']*)'`)

// convertValidationError flattens a jsonschema error into a ValidationError naming every offending field.
func convertValidationError(valErr *jsonschema.ValidationError, name string, data []byte) *ValidationError {
	leaves := leafErrors(valErr, nil)

	fieldSet := make(map[string]struct{})
	causes := make([]map[string]string, 0, len(leaves))
	parts := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		causes = append(causes, map[string]string{
			"instanceLocation": leaf.InstanceLocation,
			"keywordLocation":  leaf.KeywordLocation,
			"error":            leaf.Message,
		})
		parts = append(parts, leaf.Message)
		for _, f := range fieldsFromLeaf(leaf) {
			fieldSet[f] = struct{}{}
		}
	}

	fields := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msg := valErr.Message
	if len(parts) > 0 {
		msg = strings.Join(parts, "; ")
	}

	customErr := NewValidationError(ErrValidationFailed, msg, valErr)
	customErr.Fields = fields
	if len(leaves) > 0 {
		customErr.SchemaPath = leaves[0].KeywordLocation
		customErr.InstancePath = leaves[0].InstanceLocation
	}
	return customErr.
		WithContext("schema", name).
		WithContext("dataPreview", calculatePreview(data)).
		WithContext("validationErrors", causes)
}

// leafErrors collects the most specific errors of a validation error tree.
func leafErrors(e *jsonschema.ValidationError, acc []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return append(acc, e)
	}
	for _, c := range e.Causes {
		acc = leafErrors(c, acc)
	}
	return acc
}

// fieldsFromLeaf extracts argument names from one leaf error.
// "required" and "additionalProperties" failures sit on the parent object and
// quote the property names in their message; everything else is located by
// the first segment of its instance location.
func fieldsFromLeaf(e *jsonschema.ValidationError) []string {
	if strings.HasSuffix(e.KeywordLocation, "/required") || strings.HasSuffix(e.KeywordLocation, "/additionalProperties") {
		var out []string
		for _, m := range quotedName.FindAllStringSubmatch(e.Message, -1) {
			out = append(out, m[1])
		}
		if len(out) > 0 {
			return out
		}
	}
	loc := strings.TrimPrefix(e.InstanceLocation, "/")
	if loc == "" {
		return []string{"arguments"}
	}
	if i := strings.IndexByte(loc, '/'); i >= 0 {
		loc = loc[:i]
	}
	return []string{unescapePointer(loc)}
}

func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
