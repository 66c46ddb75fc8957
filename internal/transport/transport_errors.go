// Package transport frames JSON-RPC messages on byte streams and classifies
// framing failures.
// file: internal/transport/transport_errors.go
package transport

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/jsonrpc2"
)

// ErrorCode identifies a transport failure.
type ErrorCode int

// Transport error codes.
const (
	ErrGeneric ErrorCode = iota + 1000
	ErrInvalidMessage
	ErrMessageTooLarge
	ErrTransportClosed
	ErrJSONParseFailed
	ErrBatchUnsupported
)

// Error is a transport failure. Context holds safe-to-report details.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}

	// ID is the raw id of the offending message when it could be recovered.
	ID json.RawMessage
}

func (e *Error) Error() string {
	base := fmt.Sprintf("TransportError [%d] %s", e.Code, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair and returns e.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// JSONRPCCode returns the JSON-RPC error code reported to the peer.
func (e *Error) JSONRPCCode() int {
	switch e.Code {
	case ErrJSONParseFailed:
		return jsonrpc2.CodeParseError
	case ErrInvalidMessage, ErrMessageTooLarge, ErrBatchUnsupported:
		return jsonrpc2.CodeInvalidRequest
	default:
		return jsonrpc2.CodeInternalError
	}
}

// JSONRPCMessage returns the JSON-RPC error message reported to the peer.
func (e *Error) JSONRPCMessage() string {
	switch e.Code {
	case ErrJSONParseFailed:
		return "Parse error."
	case ErrInvalidMessage, ErrMessageTooLarge, ErrBatchUnsupported:
		return "Invalid Request."
	default:
		return "Internal error."
	}
}

// NewError creates a transport error. cause gets a stack trace attached.
func NewError(code ErrorCode, message string, cause error) *Error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewMessageSizeError reports a message longer than maxSize.
func NewMessageSizeError(size, maxSize int) *Error {
	return NewError(ErrMessageTooLarge,
		fmt.Sprintf("message size %d exceeds maximum allowed size %d", size, maxSize), nil).
		WithContext("size", size).
		WithContext("maxSize", maxSize)
}

// NewParseError reports a message that is not valid JSON.
func NewParseError(message []byte, cause error) *Error {
	return NewError(ErrJSONParseFailed, "failed to parse JSON message syntax", cause).
		WithContext("messagePreview", preview(message)).
		WithContext("messageLength", len(message))
}

// NewInvalidMessageError reports valid JSON that is not a JSON-RPC 2.0 message.
func NewInvalidMessageError(reason string, message []byte) *Error {
	return NewError(ErrInvalidMessage, reason, nil).
		WithContext("messagePreview", preview(message))
}

// NewClosedError reports an operation on a closed stream.
func NewClosedError(operation string) *Error {
	return NewError(ErrTransportClosed, fmt.Sprintf("cannot perform %s on closed transport", operation), nil).
		WithContext("operation", operation)
}

// IsClosedError reports whether err means the stream is gone.
func IsClosedError(err error) bool {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return transportErr.Code == ErrTransportClosed
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe)
}

// ErrorResponse builds the JSON-RPC error object for a framing failure.
// Details go in data.detail.
func ErrorResponse(err *Error) *jsonrpc2.Error {
	rpcErr := &jsonrpc2.Error{Code: int64(err.JSONRPCCode()), Message: err.JSONRPCMessage()}
	rpcErr.SetError(map[string]interface{}{"detail": err.Message})
	return rpcErr
}

func preview(message []byte) string {
	const maxPreview = 100
	if len(message) > maxPreview {
		return string(message[:maxPreview]) + "..."
	}
	return string(message)
}
