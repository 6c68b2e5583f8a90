package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldante1/mcp-todoist/internal/todoist"
)

func TestDryRunAdapter_CreateTask_SynthesizesWithoutCallingRealClient(t *testing.T) {
	real := &fakeAPI{}
	adapter := NewDryRunAdapter(real, nil)

	task, err := adapter.CreateTask(context.Background(), todoist.CreateTaskArgs{Content: "Buy milk", Priority: 2})

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Content, "The synthesized result echoes the input.")
	assert.Equal(t, 2, task.Priority)
	assert.Equal(t, "dryrun-1", task.ID, "Synthesized identifiers use the dryrun prefix.")
	assert.Zero(t, real.createTaskCalls, "The real client must never see a mutating call in dry-run mode.")
}

func TestDryRunAdapter_UpdateTask_EchoesDatetimeDue(t *testing.T) {
	adapter := NewDryRunAdapter(&fakeAPI{}, nil)
	datetime := "2025-03-12T15:00:00Z"

	task, err := adapter.UpdateTask(context.Background(), "42", todoist.UpdateTaskArgs{DueDatetime: &datetime})

	require.NoError(t, err)
	require.NotNil(t, task.Due, "A datetime-only update still carries a due field.")
	assert.Equal(t, datetime, task.Due.Datetime)
}

func TestDryRunAdapter_CreateTask_EchoesDatetimeDue(t *testing.T) {
	adapter := NewDryRunAdapter(&fakeAPI{}, nil)

	task, err := adapter.CreateTask(context.Background(), todoist.CreateTaskArgs{
		Content:     "Dentist",
		DueDatetime: "2025-03-12T15:00:00Z",
	})

	require.NoError(t, err)
	require.NotNil(t, task.Due)
	assert.Equal(t, "2025-03-12T15:00:00Z", task.Due.Datetime)
}

func TestDryRunAdapter_SyntheticIDs_AreSequential(t *testing.T) {
	adapter := NewDryRunAdapter(&fakeAPI{}, nil)
	ctx := context.Background()

	first, err := adapter.CreateTask(ctx, todoist.CreateTaskArgs{Content: "one"})
	require.NoError(t, err)
	second, err := adapter.CreateProject(ctx, todoist.CreateProjectArgs{Name: "two"})
	require.NoError(t, err)

	assert.Equal(t, "dryrun-1", first.ID)
	assert.Equal(t, "dryrun-2", second.ID)
}

func TestDryRunAdapter_Reads_PassThroughToRealClient(t *testing.T) {
	real := &fakeAPI{tasks: []todoist.Task{{ID: "42", Content: "Real task"}}}
	adapter := NewDryRunAdapter(real, nil)

	tasks, err := adapter.GetTasks(context.Background(), todoist.TaskFilter{})

	require.NoError(t, err)
	require.Len(t, tasks, 1, "Read-only calls always reach the real client.")
	assert.Equal(t, "Real task", tasks[0].Content)
	assert.Equal(t, 1, real.getTasksCalls)
}

func TestDryRunAdapter_MutationsLeaveRealStateUntouched(t *testing.T) {
	real := &fakeAPI{tasks: []todoist.Task{{ID: "42", Content: "Keep me"}}}
	adapter := NewDryRunAdapter(real, nil)
	ctx := context.Background()

	require.NoError(t, adapter.CloseTask(ctx, "42"))
	require.NoError(t, adapter.DeleteTask(ctx, "42"))

	assert.Zero(t, real.closeTaskCalls)
	assert.Zero(t, real.deleteCalls)
	tasks, err := real.GetTasks(ctx, todoist.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1, "The real account is untouched by simulated mutations.")
	assert.False(t, tasks[0].IsCompleted)
}

func TestDryRunAdapter_LocalValidation_StillApplies(t *testing.T) {
	adapter := NewDryRunAdapter(&fakeAPI{}, nil)

	_, err := adapter.CreateTask(context.Background(), todoist.CreateTaskArgs{})
	assert.Error(t, err, "Dry-run mode still rejects locally invalid input.")
}
