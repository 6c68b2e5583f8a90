package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldante1/mcp-todoist/internal/mcp/mcperrors"
	"github.com/aldante1/mcp-todoist/internal/todoist"
)

func newTestService(api TaskAPI) *Service {
	s := NewService(api, 10, nil)
	s.nowFn = func() time.Time { return asOf }
	return s
}

func firstText(t *testing.T, svc *Service, name, args string) string {
	t.Helper()
	result, err := svc.CallTool(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err, "Tool %s should succeed.", name)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	return result.Content[0].Text
}

func TestService_ListTools_StableOrderAndUniqueNames(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	first := svc.ListTools()
	second := svc.ListTools()

	require.NotEmpty(t, first)
	require.Equal(t, len(first), len(second))
	seen := make(map[string]bool, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name, "Listing order must be stable across calls.")
		assert.False(t, seen[first[i].Name], "Tool %q must be listed exactly once.", first[i].Name)
		seen[first[i].Name] = true
	}
	assert.True(t, seen["get_daily_overview"], "The richer tool set includes the daily overview.")
	assert.True(t, seen["bulk_create_tasks"])
	assert.True(t, seen["get_project"])
	assert.True(t, seen["get_completed_tasks"])
}

func TestService_CallTool_UnknownName_ReturnsMethodNotFound(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	_, err := svc.CallTool(context.Background(), "frobnicate", nil)

	require.Error(t, err)
	var notFound *mcperrors.MethodNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestService_CreateTask_ReturnsFormattedLine(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	text := firstText(t, svc, "create_task", `{"content":"Buy milk","priority":1}`)

	assert.Contains(t, text, "Created task:")
	assert.Contains(t, text, "[P1] Buy milk")
}

func TestService_BulkCreateTasks_Sequential_FailureSurfacesFirstError(t *testing.T) {
	api := &fakeAPI{failCreateAt: 2}
	svc := newTestService(api)

	_, err := svc.CallTool(context.Background(), "bulk_create_tasks",
		json.RawMessage(`{"tasks":[{"content":"one"},{"content":"two"},{"content":"three"}]}`))

	require.Error(t, err, "The first failure stops the sequence.")
	assert.Contains(t, err.Error(), "item 2 of 3")
	assert.Equal(t, 2, api.createTaskCalls, "No item after the failure is attempted.")
	tasks, _ := api.GetTasks(context.Background(), todoist.TaskFilter{})
	assert.Len(t, tasks, 1, "Partial application is allowed and not rolled back.")
}

func TestService_BulkCreateTasks_DryRun_NeverTouchesRealClient(t *testing.T) {
	real := &fakeAPI{}
	svc := newTestService(NewDryRunAdapter(real, nil))

	text := firstText(t, svc, "bulk_create_tasks",
		`{"tasks":[{"content":"one"},{"content":"two"},{"content":"three"}]}`)

	assert.Contains(t, text, "Created 3 tasks:", "All three synthesized results are reported.")
	assert.Contains(t, text, "dryrun-")
	assert.Zero(t, real.createTaskCalls, "The real create method is never invoked in dry-run mode.")
}

func TestService_UnsupportedOperations_AlwaysFailWithGuidance(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	for name, args := range map[string]string{
		"convert_to_subtask": `{"id":"1","parent_id":"2"}`,
		"promote_subtask":    `{"id":"1"}`,
	} {
		_, err := svc.CallTool(context.Background(), name, json.RawMessage(args))
		require.Error(t, err, "%s is intentionally unimplemented.", name)
		var unsupported *mcperrors.UnsupportedOperationError
		require.True(t, errors.As(err, &unsupported))
		assert.Contains(t, err.Error(), "not supported", "The error explains the limitation.")
	}
}

func TestService_GetSubtasks_FiltersByParent(t *testing.T) {
	api := &fakeAPI{tasks: []todoist.Task{
		{ID: "1", Content: "Parent"},
		{ID: "2", Content: "Child A", ParentID: "1"},
		{ID: "3", Content: "Child B", ParentID: "1"},
		{ID: "4", Content: "Unrelated"},
	}}
	svc := newTestService(api)

	text := firstText(t, svc, "get_subtasks", `{"parent_id":"1"}`)

	assert.Contains(t, text, "Found 2 subtasks of 1:")
	assert.Contains(t, text, "Child A")
	assert.NotContains(t, text, "Unrelated")
}

func TestService_UpdateLabel_ResolvesByNameNotID(t *testing.T) {
	api := &fakeAPI{labels: []todoist.Label{{ID: "77", Name: "errand", Color: "red"}}}
	svc := newTestService(api)

	text := firstText(t, svc, "update_label", `{"name":"Errand","new_name":"chores"}`)

	assert.Contains(t, text, `Updated label "chores"`)
	labels, _ := api.GetLabels(context.Background())
	require.Len(t, labels, 1)
	assert.Equal(t, "chores", labels[0].Name, "The label addressed by name got updated in place.")
}

func TestService_GetProject_RendersDetail(t *testing.T) {
	api := &fakeAPI{projects: []todoist.Project{
		{ID: "7", Name: "Chores", Color: "berry_red", IsFavorite: true},
	}}
	svc := newTestService(api)

	text := firstText(t, svc, "get_project", `{"id":"7"}`)

	assert.Contains(t, text, "Project: Chores")
	assert.Contains(t, text, "ID: 7")
	assert.Contains(t, text, "Color: berry_red")
	assert.Contains(t, text, "Favorite: yes")
}

func TestService_GetCompletedTasks_ListsOnlyCompleted(t *testing.T) {
	api := &fakeAPI{tasks: []todoist.Task{
		{ID: "1", Content: "Done", IsCompleted: true},
		{ID: "2", Content: "Pending"},
	}}
	svc := newTestService(api)

	text := firstText(t, svc, "get_completed_tasks", `{"since":"2025-03-12T00:00:00Z"}`)

	assert.Contains(t, text, "Done")
	assert.NotContains(t, text, "Pending")
}

func TestService_GetCompletedTasks_Empty_SaysSo(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	text := firstText(t, svc, "get_completed_tasks", `{}`)

	assert.Equal(t, "No completed tasks found.", text)
}

func TestService_DeleteLabel_UnknownName_IsInvalidParams(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	_, err := svc.CallTool(context.Background(), "delete_label", json.RawMessage(`{"name":"ghost"}`))

	require.Error(t, err)
	var paramsErr *mcperrors.InvalidParamsError
	assert.True(t, errors.As(err, &paramsErr), "A missing label is the caller's mistake, not an internal failure.")

	var base *mcperrors.BaseError
	require.True(t, errors.As(err, &base))
	assert.Equal(t, mcperrors.CodeInvalidParams, base.Code,
		"CallTool must pass taxonomy errors through instead of rewrapping them.")
	var todoistErr *mcperrors.TodoistError
	assert.False(t, errors.As(err, &todoistErr))
}

func TestService_GetComments_RequiresExactlyOneParent(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	_, err := svc.CallTool(context.Background(), "get_comments", json.RawMessage(`{}`))
	require.Error(t, err, "Neither parent given should be rejected.")

	_, err = svc.CallTool(context.Background(), "get_comments", json.RawMessage(`{"task_id":"1","project_id":"2"}`))
	require.Error(t, err, "Both parents given should be rejected.")
}

func TestService_DailyOverview_RendersBuckets(t *testing.T) {
	api := &fakeAPI{tasks: []todoist.Task{
		{ID: "1", Content: "Late", Priority: 1, Due: dueOn(asOf.AddDate(0, 0, -1))},
		{ID: "2", Content: "Now", Priority: 3, Due: dueOn(asOf)},
	}}
	svc := newTestService(api)

	text := firstText(t, svc, "get_daily_overview", `{}`)

	assert.Contains(t, text, "Overdue (1):")
	assert.Contains(t, text, "[P1] Late")
	assert.Contains(t, text, "Due today (1):")
	assert.Equal(t, 1, api.getTasksCalls, "The overview fetches the task list exactly once.")
}

func TestService_DailyOverview_ExplicitDate_ShiftsBuckets(t *testing.T) {
	yesterday := asOf.AddDate(0, 0, -1)
	api := &fakeAPI{tasks: []todoist.Task{
		{ID: "1", Content: "Late", Priority: 1, Due: dueOn(yesterday)},
	}}
	svc := newTestService(api)

	text := firstText(t, svc, "get_daily_overview", `{"date":"`+yesterday.Format("2006-01-02")+`"}`)

	assert.Contains(t, text, "Due today (1):", "As of yesterday, the task is due that day, not overdue.")
	assert.NotContains(t, text, "Overdue")
}

func TestService_DailyOverview_MalformedDate_IsInvalidParams(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	_, err := svc.CallTool(context.Background(), "get_daily_overview", json.RawMessage(`{"date":"March 12"}`))

	require.Error(t, err)
	var invalid *mcperrors.InvalidParamsError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "date", invalid.Context["field"])
}

func TestService_GetTasks_Empty_SaysNoTasksFound(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	text := firstText(t, svc, "get_tasks", `{}`)

	assert.Equal(t, "No tasks found.", text)
}

func TestService_RemoteFailure_WrapsAsTodoistError(t *testing.T) {
	api := &fakeAPI{failCreateAt: 1}
	svc := newTestService(api)

	_, err := svc.CallTool(context.Background(), "create_task", json.RawMessage(`{"content":"x"}`))

	require.Error(t, err)
	var todoistErr *mcperrors.TodoistError
	assert.True(t, errors.As(err, &todoistErr), "Plain collaborator errors are wrapped for the dispatcher's taxonomy.")
}
