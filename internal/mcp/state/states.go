// Package state defines the states and events for the per-request MCP
// dispatch lifecycle, built on the generic fsm package.
package state

import "github.com/aldante1/mcp-todoist/internal/fsm"

// Request lifecycle states. Every inbound JSON-RPC request walks this machine
// from StateReceived to exactly one of the terminal states.
const (
	// StateReceived is the initial state after a message arrives.
	StateReceived fsm.State = "received"
	// StateValidated means the method is recognized and arguments passed schema validation.
	StateValidated fsm.State = "validated"
	// StateExecuting means the handler is running.
	StateExecuting fsm.State = "executing"
	// StateResponded is the terminal state for a successful response.
	StateResponded fsm.State = "responded"
	// StateRejected is the terminal state for any refusal or failure.
	StateRejected fsm.State = "rejected"
)

// IsTerminal reports whether the request lifecycle has finished.
func IsTerminal(s fsm.State) bool {
	return s == StateResponded || s == StateRejected
}
