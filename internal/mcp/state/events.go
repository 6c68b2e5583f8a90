package state

import "github.com/aldante1/mcp-todoist/internal/fsm"

// Request lifecycle events.
const (
	// EventArgsValidated fires when the method is recognized and the
	// arguments satisfy the tool's parameter schema.
	EventArgsValidated fsm.Event = "argsValidated"
	// EventArgsRejected fires when the method is unknown or the arguments
	// violate the tool's parameter schema.
	EventArgsRejected fsm.Event = "argsRejected"
	// EventHandlerStarted fires when dispatch hands the request to a handler.
	EventHandlerStarted fsm.Event = "handlerStarted"
	// EventHandlerSucceeded fires when the handler returns a result.
	EventHandlerSucceeded fsm.Event = "handlerSucceeded"
	// EventHandlerFailed fires when the handler returns an error.
	EventHandlerFailed fsm.Event = "handlerFailed"
)
