// file: internal/transport/validate.go
package transport

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// MessageKind classifies an inbound JSON-RPC message.
type MessageKind int

// Message kinds.
const (
	KindRequest MessageKind = iota + 1
	KindNotification
	KindResponse
)

// Envelope holds the fields of a message needed to route it.
type Envelope struct {
	Kind   MessageKind
	Method string
	ID     json.RawMessage // Nil for notifications.
}

// Inspect checks that message is a single JSON-RPC 2.0 request, notification
// or response. The returned error carries the message id when one could be read.
func Inspect(message []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(message)
	if !json.Valid(trimmed) {
		return Envelope{}, NewParseError(message, nil)
	}
	if trimmed[0] == '[' {
		return Envelope{}, NewError(ErrBatchUnsupported, "batch messages are not supported", nil)
	}

	var msg map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &msg); err != nil || msg == nil {
		return Envelope{}, NewInvalidMessageError("message must be a JSON object", message)
	}

	env := Envelope{}
	rawID, hasID := msg["id"]
	if hasID {
		if !validID(rawID) {
			return env, NewInvalidMessageError("id must be a string or a number", message)
		}
		env.ID = rawID
	}
	fail := func(reason string) (Envelope, error) {
		e := NewInvalidMessageError(reason, message)
		e.ID = env.ID
		return env, e
	}

	var version string
	if err := json.Unmarshal(msg["jsonrpc"], &version); err != nil || version != "2.0" {
		return fail("'jsonrpc' must be \"2.0\"")
	}

	rawMethod, hasMethod := msg["method"]
	if !hasMethod {
		_, hasResult := msg["result"]
		_, hasError := msg["error"]
		if !hasID || hasResult == hasError {
			return fail("message must contain 'method', or 'id' with exactly one of 'result' or 'error'")
		}
		env.Kind = KindResponse
		return env, nil
	}

	if err := json.Unmarshal(rawMethod, &env.Method); err != nil || env.Method == "" {
		return fail("method must be a non-empty string")
	}
	if strings.HasPrefix(env.Method, "rpc.") {
		return fail("method names starting with 'rpc.' are reserved")
	}
	if params, ok := msg["params"]; ok {
		p := bytes.TrimSpace(params)
		if len(p) == 0 || (p[0] != '{' && p[0] != '[' && !bytes.Equal(p, []byte("null"))) {
			return fail("params must be an object or array")
		}
	}
	if _, ok := msg["result"]; ok {
		return fail("request cannot contain 'result'")
	}
	if _, ok := msg["error"]; ok {
		return fail("request cannot contain 'error'")
	}

	if hasID {
		env.Kind = KindRequest
	} else {
		env.Kind = KindNotification
	}
	return env, nil
}

// validID accepts strings and non-negative integers, the id forms jsonrpc2 can echo. Null ids are rejected.
func validID(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	if raw[0] == '"' {
		var s string
		return json.Unmarshal(raw, &s) == nil
	}
	_, err := strconv.ParseUint(string(raw), 10, 64)
	return err == nil
}
