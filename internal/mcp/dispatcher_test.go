package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldante1/mcp-todoist/internal/mcp/mcperrors"
)

// spyToolService records calls and returns canned results.
type spyToolService struct {
	tools      []Tool
	lastName   string
	lastArgs   json.RawMessage
	callResult *CallToolResult
	callErr    error
	callCount  int
}

func (s *spyToolService) ListTools() []Tool { return s.tools }

func (s *spyToolService) CallTool(_ context.Context, name string, args json.RawMessage) (*CallToolResult, error) {
	s.callCount++
	s.lastName = name
	s.lastArgs = args
	return s.callResult, s.callErr
}

func newTestDispatcher(t *testing.T, service *spyToolService) *Dispatcher {
	t.Helper()
	if service.tools == nil {
		service.tools = []Tool{{
			Name:        "create_task",
			Description: "Create a task.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"content":  {"type": "string", "minLength": 1},
					"priority": {"type": "integer", "minimum": 1, "maximum": 4}
				},
				"required": ["content"]
			}`),
		}}
	}
	d, err := NewDispatcher(service, ServerInfo{Name: "test-server", Version: "0.0.1"}, nil)
	require.NoError(t, err, "Dispatcher construction should succeed with valid schemas.")
	return d
}

func dispatch(t *testing.T, d *Dispatcher, raw string) *Response {
	t.Helper()
	respBytes, err := d.DispatchMessage(context.Background(), []byte(raw))
	require.NoError(t, err, "Dispatch should always produce a serializable response.")
	require.NotNil(t, respBytes, "A request with an ID must receive a response.")
	var resp Response
	require.NoError(t, json.Unmarshal(respBytes, &resp))
	return &resp
}

func TestDispatcher_ToolsList_ReturnsRegisteredTools(t *testing.T) {
	service := &spyToolService{}
	d := newTestDispatcher(t, service)

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	require.Nil(t, resp.Error, "tools/list should succeed.")
	var result ListToolsResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "create_task", result.Tools[0].Name)
}

func TestDispatcher_ToolsCall_ValidArgs_InvokesService(t *testing.T) {
	service := &spyToolService{callResult: NewTextResult("Created task: Buy milk")}
	d := newTestDispatcher(t, service)

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"create_task","arguments":{"content":"Buy milk","priority":1}}}`)

	require.Nil(t, resp.Error)
	assert.Equal(t, 1, service.callCount, "The service should be invoked exactly once.")
	assert.Equal(t, "create_task", service.lastName)

	var result CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "Created task: Buy milk", result.Content[0].Text)
	assert.False(t, result.IsError)
}

func TestDispatcher_ToolsCall_SchemaViolation_ReturnsInvalidParamsWithoutInvokingService(t *testing.T) {
	service := &spyToolService{}
	d := newTestDispatcher(t, service)

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"create_task","arguments":{"content":"x","priority":11}}}`)

	require.NotNil(t, resp.Error, "Out-of-range priority must be rejected.")
	assert.Equal(t, int(mcperrors.CodeInvalidParams), resp.Error.Code)
	assert.Zero(t, service.callCount, "Validation failures must not reach the handler.")

	data, ok := resp.Error.Data.(map[string]interface{})
	require.True(t, ok, "Error data should carry diagnostic context.")
	assert.Equal(t, "priority", data["field"], "The violated field should be named.")
}

func TestDispatcher_ToolsCall_UnknownTool_ReturnsMethodNotFound(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"no_such_tool","arguments":{}}}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, int(mcperrors.CodeMethodNotFound), resp.Error.Code)
}

func TestDispatcher_ToolsCall_HandlerError_MapsToInternal(t *testing.T) {
	service := &spyToolService{callErr: mcperrors.NewTodoistError("todoist returned status 500", nil)}
	d := newTestDispatcher(t, service)

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"create_task","arguments":{"content":"x"}}}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, int(mcperrors.CodeInternalError), resp.Error.Code, "Remote failures surface as internal errors on the wire.")
	data, ok := resp.Error.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "todoist returned status 500", data["detail"], "The original message should survive as detail.")
}

func TestDispatcher_UnknownMethod_ReturnsMethodNotFound(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":6,"method":"resources/list"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, int(mcperrors.CodeMethodNotFound), resp.Error.Code)
}

func TestDispatcher_MalformedJSON_ReturnsParseErrorWithNullID(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":7,`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, int(mcperrors.CodeParseError), resp.Error.Code)
	assert.Equal(t, "null", string(resp.ID), "Unparseable requests get a null ID per JSON-RPC 2.0.")
}

func TestDispatcher_WrongVersion_ReturnsInvalidRequest(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	resp := dispatch(t, d, `{"jsonrpc":"1.0","id":8,"method":"ping"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, int(mcperrors.CodeInvalidRequest), resp.Error.Code)
}

func TestDispatcher_Notification_ProducesNoResponse(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	respBytes, err := d.DispatchMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))

	require.NoError(t, err)
	assert.Nil(t, respBytes, "Notifications must not produce responses.")
}

func TestDispatcher_Ping_ReturnsEmptyResult(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":9,"method":"ping"}`)

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{}`, string(resp.Result))
}

func TestDispatcher_Initialize_AdvertisesToolsCapability(t *testing.T) {
	d := newTestDispatcher(t, &spyToolService{})

	resp := dispatch(t, d, `{"jsonrpc":"2.0","id":10,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test-client","version":"1.0"}}}`)

	require.Nil(t, resp.Error)
	var result InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "test-server", result.ServerInfo.Name)
	assert.Equal(t, ProtocolVersion, result.ProtocolVersion)
	require.NotNil(t, result.Capabilities.Tools, "The tools capability must be advertised.")
}
