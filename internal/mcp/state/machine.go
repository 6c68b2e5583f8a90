package state

import (
	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/fsm"
	"github.com/aldante1/mcp-todoist/internal/logging"
)

// requestTransitions enumerates the legal request lifecycle transitions.
// A request is validated or rejected, then executes, then terminates.
var requestTransitions = []fsm.Transition{
	{From: []fsm.State{StateReceived}, Event: EventArgsValidated, To: StateValidated},
	{From: []fsm.State{StateReceived, StateValidated}, Event: EventArgsRejected, To: StateRejected},
	{From: []fsm.State{StateValidated}, Event: EventHandlerStarted, To: StateExecuting},
	{From: []fsm.State{StateExecuting}, Event: EventHandlerSucceeded, To: StateResponded},
	{From: []fsm.State{StateExecuting}, Event: EventHandlerFailed, To: StateRejected},
}

// NewRequestMachine creates a state machine tracking a single request's
// dispatch lifecycle, starting in StateReceived.
func NewRequestMachine(logger logging.Logger) (*fsm.Machine, error) {
	machine, err := fsm.New(StateReceived, requestTransitions, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request lifecycle machine")
	}
	return machine, nil
}
