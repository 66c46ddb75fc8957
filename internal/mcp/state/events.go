// file: internal/mcp/state/events.go
package state

import "github.com/dkoosis/clevermcp/internal/fsm"

// Lifecycle method names.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
)

// Session events.
const (
	EventInitializeRequest fsm.Event = "rcvd_initialize_request"
	EventClientInitialized fsm.Event = "rcvd_client_initialized_notif"
	EventConnectionClosed  fsm.Event = "connection_closed"
)

// EventForMethod returns the lifecycle event triggered by method, or "" when
// method does not move the session.
func EventForMethod(method string) fsm.Event {
	switch method {
	case MethodInitialize:
		return EventInitializeRequest
	case MethodInitialized:
		return EventClientInitialized
	default:
		return ""
	}
}
