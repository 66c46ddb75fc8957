// Package state defines the states and events of an MCP session lifecycle.
// file: internal/mcp/state/states.go
package state

import "github.com/dkoosis/clevermcp/internal/fsm"

// Session states.
const (
	StateUninitialized fsm.State = "uninitialized" // Connected, no initialize yet.
	StateInitializing  fsm.State = "initializing"  // initialize answered, awaiting notifications/initialized.
	StateInitialized   fsm.State = "initialized"   // Handshake complete.
	StateShutdown      fsm.State = "shutdown"      // Connection closed.
)

// IsTerminal reports whether no further transitions are possible from s.
func IsTerminal(s fsm.State) bool {
	return s == StateShutdown
}

// IsOperational reports whether capability methods are accepted in s.
// Clients may start issuing requests before notifications/initialized arrives.
func IsOperational(s fsm.State) bool {
	return s == StateInitializing || s == StateInitialized
}
