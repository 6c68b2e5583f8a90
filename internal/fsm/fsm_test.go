package fsm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldante1/mcp-todoist/internal/logging"
)

const (
	stateIdle     State = "idle"
	stateRunning  State = "running"
	stateFinished State = "finished"

	eventStart Event = "start"
	eventStop  Event = "stop"
)

func buildTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := New(stateIdle, []Transition{
		{From: []State{stateIdle}, Event: eventStart, To: stateRunning},
		{From: []State{stateRunning}, Event: eventStop, To: stateFinished},
	}, logging.GetNoopLogger())
	require.NoError(t, err, "Building the test machine should succeed.")
	return m
}

func TestMachine_BasicTransitions_Succeed(t *testing.T) {
	m := buildTestMachine(t)
	ctx := context.Background()

	assert.Equal(t, stateIdle, m.Current(), "Initial state should be idle.")

	require.NoError(t, m.Fire(ctx, eventStart), "Idle to running should succeed.")
	assert.Equal(t, stateRunning, m.Current(), "State should be running after start.")

	require.NoError(t, m.Fire(ctx, eventStop), "Running to finished should succeed.")
	assert.Equal(t, stateFinished, m.Current(), "State should be finished after stop.")
}

func TestMachine_InvalidEvent_ReturnsError(t *testing.T) {
	m := buildTestMachine(t)

	err := m.Fire(context.Background(), eventStop)
	assert.Error(t, err, "Stop should not be allowed from idle.")
	assert.Equal(t, stateIdle, m.Current(), "State should be unchanged after a refused event.")
}

func TestMachine_Can_ReflectsCurrentState(t *testing.T) {
	m := buildTestMachine(t)

	assert.True(t, m.Can(eventStart), "Start should be allowed from idle.")
	assert.False(t, m.Can(eventStop), "Stop should not be allowed from idle.")
}

func TestMachine_Reset_ReturnsToInitialState(t *testing.T) {
	m := buildTestMachine(t)
	require.NoError(t, m.Fire(context.Background(), eventStart))

	m.Reset()
	assert.Equal(t, stateIdle, m.Current(), "Reset should return the machine to its initial state.")
}

func TestMachine_ConflictingDestinations_FailsToBuild(t *testing.T) {
	_, err := New(stateIdle, []Transition{
		{From: []State{stateIdle}, Event: eventStart, To: stateRunning},
		{From: []State{stateFinished}, Event: eventStart, To: stateIdle},
	}, nil)
	assert.Error(t, err, "Conflicting destinations for one event should be rejected at build time.")
}

func TestMachine_MultipleSourceStates_AreAccepted(t *testing.T) {
	m, err := New(stateIdle, []Transition{
		{From: []State{stateIdle, stateRunning}, Event: eventStop, To: stateFinished},
		{From: []State{stateIdle}, Event: eventStart, To: stateRunning},
	}, nil)
	require.NoError(t, err, "Multiple sources for one event should build.")

	ctx := context.Background()
	require.NoError(t, m.Fire(ctx, eventStart))
	require.NoError(t, m.Fire(ctx, eventStop), "Stop should be allowed from running via the shared transition.")
	assert.Equal(t, stateFinished, m.Current())
}
