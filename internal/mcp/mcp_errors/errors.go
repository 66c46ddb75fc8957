// Package mcperrors defines domain-specific error types and codes for the MCP layer.
// These errors carry more context than plain Go errors and are mapped onto
// JSON-RPC error responses at the transport boundary.
package mcperrors

// file: internal/mcp/mcp_errors/errors.go

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/jsonrpc2"
)

// ErrorCode defines domain-specific error codes for the MCP layer.
type ErrorCode int

// Domain-specific error codes.
const (
	// --- Capability lookup errors (3000-3999) ---.
	ErrToolNotFound ErrorCode = 3000 + iota
	ErrPromptNotFound
	ErrResourceNotFound
)

const (
	// --- Remote service errors (2000-2999) ---.
	ErrRemoteFetch ErrorCode = 2000 + iota
	ErrRemoteBodyRead
)

// Codes that map directly onto JSON-RPC equivalents.
const (
	ErrMethodNotFound ErrorCode = jsonrpc2.CodeMethodNotFound // -32601
	ErrInvalidParams  ErrorCode = jsonrpc2.CodeInvalidParams  // -32602
	ErrInternalError  ErrorCode = jsonrpc2.CodeInternalError  // -32603

	// Server-defined codes in the -32000..-32099 range.
	ErrRequestSequence ErrorCode = -32001
)

// Wire codes for the server-defined range.
const (
	JSONRPCRequestSequence  = -32001
	JSONRPCResourceNotFound = -32002
	JSONRPCRemoteFailure    = -32020
)

// BaseError is the common MCP error type.
type BaseError struct {
	// Code categorizes the error using the constants above.
	Code ErrorCode
	// Message is a human-readable description, safe to send to clients.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// Context holds key/value details (tool name, uri, offending fields).
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("MCPError (Code: %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("MCPError (Code: %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair to the error's context and returns the error for chaining.
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, context map[string]interface{}) *BaseError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &BaseError{Code: code, Message: message, Cause: cause, Context: context}
}

// NewProtocolError creates a protocol-level error with the given code.
func NewProtocolError(code ErrorCode, message string, cause error, context map[string]interface{}) error {
	return newError(code, message, cause, context)
}

// NewInvalidParamsError creates an error for invalid parameters (maps to -32602).
func NewInvalidParamsError(message string, cause error, context map[string]interface{}) error {
	return newError(ErrInvalidParams, message, cause, context)
}

// NewMethodNotFoundError creates an error for an unknown method (maps to -32601).
func NewMethodNotFoundError(message string, cause error, context map[string]interface{}) error {
	return newError(ErrMethodNotFound, message, cause, context)
}

// NewInternalError creates a generic internal error (maps to -32603).
func NewInternalError(message string, cause error, context map[string]interface{}) error {
	return newError(ErrInternalError, message, cause, context)
}

// NewUnknownCapabilityError reports a lookup miss. kind is "tool", "prompt" or "resource".
func NewUnknownCapabilityError(kind string, name string) error {
	code := ErrToolNotFound
	switch kind {
	case "prompt":
		code = ErrPromptNotFound
	case "resource":
		code = ErrResourceNotFound
	}
	ctx := map[string]interface{}{"kind": kind}
	if kind == "resource" {
		ctx["uri"] = name
	} else {
		ctx["name"] = name
	}
	return newError(code, fmt.Sprintf("Unknown %s: %s", kind, name), nil, ctx)
}

// NewRemoteFetchError reports a transport-level failure talking to a remote endpoint.
func NewRemoteFetchError(code ErrorCode, message string, cause error, context map[string]interface{}) error {
	if code < 2000 || code > 2999 {
		code = ErrRemoteFetch
	}
	return newError(code, message, cause, context)
}

// NewValidationFailedError reports argument validation failures, naming each field.
func NewValidationFailedError(toolName string, fields []string, cause error) error {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	msg := fmt.Sprintf("Invalid arguments for tool '%s'", toolName)
	if len(sorted) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(sorted, ", "))
	}
	return newError(ErrInvalidParams, msg, cause, map[string]interface{}{
		"toolName": toolName,
		"fields":   sorted,
	})
}

// IsCode reports whether err is (or wraps) a BaseError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var base *BaseError
	return errors.As(err, &base) && base.Code == code
}

// MapMCPErrorToJSONRPC translates an error into JSON-RPC error components.
func MapMCPErrorToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	data = make(map[string]interface{})

	var baseErr *BaseError
	if !errors.As(err, &baseErr) {
		// Schema validation and transport errors expose their own JSON-RPC code.
		var coded interface{ JSONRPCCode() int }
		if errors.As(err, &coded) {
			message = "Invalid params."
			var described interface{ JSONRPCMessage() string }
			if errors.As(err, &described) {
				message = described.JSONRPCMessage()
			}
			return coded.JSONRPCCode(), message, map[string]interface{}{"detail": err.Error()}
		}
		code = jsonrpc2.CodeInternalError
		message = "An internal server error occurred."
		data["goErrorType"] = fmt.Sprintf("%T", err)
		return code, message, data
	}

	switch baseErr.Code {
	case ErrMethodNotFound:
		code = jsonrpc2.CodeMethodNotFound
		message = "Method not found."
	case ErrInvalidParams:
		code = jsonrpc2.CodeInvalidParams
		message = "Invalid params."
	case ErrInternalError:
		code = jsonrpc2.CodeInternalError
		message = "Internal error."
	case ErrRequestSequence:
		code = JSONRPCRequestSequence
		message = "Invalid Request Sequence."
	case ErrToolNotFound, ErrPromptNotFound:
		code = jsonrpc2.CodeInvalidParams
		message = baseErr.Message
	case ErrResourceNotFound:
		code = JSONRPCResourceNotFound
		message = "Resource not found."
	case ErrRemoteFetch, ErrRemoteBodyRead:
		code = JSONRPCRemoteFailure
		message = "Could not communicate with external service."
	default:
		code = jsonrpc2.CodeInternalError
		message = "An unspecified internal error occurred."
		data["internalCode"] = baseErr.Code
	}
	data["detail"] = baseErr.Message

	for k, v := range baseErr.Context {
		switch k {
		case "kind", "name", "uri", "toolName", "method", "fields", "state":
			if _, exists := data[k]; !exists {
				data[k] = v
			}
		}
	}

	return code, message, data
}
