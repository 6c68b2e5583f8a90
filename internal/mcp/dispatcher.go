package mcp

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/fsm"
	"github.com/aldante1/mcp-todoist/internal/logging"
	"github.com/aldante1/mcp-todoist/internal/mcp/mcperrors"
	"github.com/aldante1/mcp-todoist/internal/mcp/state"
	"github.com/aldante1/mcp-todoist/internal/schema"
)

// ToolService is the surface the dispatcher needs from the tools layer.
type ToolService interface {
	// ListTools returns all tool definitions in stable registration order.
	ListTools() []Tool
	// CallTool executes the named tool. Failures come back as errors from
	// the mcperrors taxonomy so the dispatcher can map them to wire codes.
	CallTool(ctx context.Context, name string, args json.RawMessage) (*CallToolResult, error)
}

// Dispatcher routes parsed JSON-RPC messages to method handlers. It owns
// envelope validation, argument schema validation, and error mapping; each
// request is tracked through a lifecycle state machine.
type Dispatcher struct {
	service   ToolService
	validator *schema.Validator
	info      ServerInfo
	logger    logging.Logger
}

// NewDispatcher builds a dispatcher for the given tool service, compiling
// every tool's parameter schema up front. A tool whose schema fails to
// compile is a programming error and aborts construction.
func NewDispatcher(service ToolService, info ServerInfo, logger logging.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	validator := schema.NewValidator(logger)
	for _, tool := range service.ListTools() {
		if err := validator.Register(tool.Name, tool.InputSchema); err != nil {
			return nil, errors.Wrapf(err, "failed to register schema for tool %q", tool.Name)
		}
	}
	return &Dispatcher{
		service:   service,
		validator: validator,
		info:      info,
		logger:    logger.WithField("component", "mcp_dispatcher"),
	}, nil
}

// DispatchMessage processes one raw JSON-RPC message and returns the
// serialized response, or nil for notifications. Every failure is expressed
// as a JSON-RPC error response; the returned error is reserved for marshal
// failures that make responding impossible.
func (d *Dispatcher) DispatchMessage(ctx context.Context, message []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		d.logger.Warn("Failed to parse inbound message.", "error", err)
		return d.errorResponse(json.RawMessage("null"), mcperrors.NewParseError("message is not valid JSON", err))
	}
	if req.JSONRPC != JSONRPCVersion {
		return d.errorResponse(req.ID, mcperrors.NewInvalidRequestError("jsonrpc version must be \"2.0\"", nil))
	}
	if req.Method == "" {
		return d.errorResponse(req.ID, mcperrors.NewInvalidRequestError("method must not be empty", nil))
	}

	logger := d.logger.WithField("method", req.Method)
	logger.Debug("Dispatching request.")

	result, err := d.route(ctx, &req)
	if req.IsNotification() {
		// Notifications never get a response, even on failure.
		if err != nil {
			logger.Warn("Notification handling failed.", "error", err)
		}
		return nil, nil
	}
	if err != nil {
		logger.Info("Request failed.", "error", err)
		return d.errorResponse(req.ID, err)
	}
	return d.successResponse(req.ID, result)
}

// route invokes the handler for the request's method, walking the request
// lifecycle machine as it goes.
func (d *Dispatcher) route(ctx context.Context, req *Request) (interface{}, error) {
	machine, err := state.NewRequestMachine(d.logger)
	if err != nil {
		return nil, mcperrors.NewInternalError("failed to build request lifecycle", err)
	}

	switch req.Method {
	case "initialize":
		return d.runHandler(ctx, machine, func(ctx context.Context) (interface{}, error) {
			return d.handleInitialize(ctx, req.Params)
		})
	case "ping":
		return d.runHandler(ctx, machine, func(_ context.Context) (interface{}, error) {
			return struct{}{}, nil
		})
	case "tools/list":
		return d.runHandler(ctx, machine, func(_ context.Context) (interface{}, error) {
			return ListToolsResult{Tools: d.service.ListTools()}, nil
		})
	case "tools/call":
		return d.handleCallTool(ctx, machine, req.Params)
	case "notifications/initialized", "notifications/cancelled":
		// Lifecycle notifications are accepted and ignored.
		return nil, nil
	default:
		_ = machine.Fire(ctx, state.EventArgsRejected)
		return nil, mcperrors.NewMethodNotFoundError(req.Method)
	}
}

// runHandler drives the lifecycle machine around a handler with no argument
// validation step of its own.
func (d *Dispatcher) runHandler(ctx context.Context, machine *fsm.Machine, handler func(context.Context) (interface{}, error)) (interface{}, error) {
	_ = machine.Fire(ctx, state.EventArgsValidated)
	_ = machine.Fire(ctx, state.EventHandlerStarted)
	result, err := handler(ctx)
	if err != nil {
		_ = machine.Fire(ctx, state.EventHandlerFailed)
		return nil, err
	}
	_ = machine.Fire(ctx, state.EventHandlerSucceeded)
	return result, nil
}

func (d *Dispatcher) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var initParams InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, mcperrors.NewInvalidParamsError("initialize params are not valid JSON", "", err)
		}
	}
	if initParams.ClientInfo.Name != "" {
		d.logger.Info("Client connected.",
			"clientName", initParams.ClientInfo.Name,
			"clientVersion", initParams.ClientInfo.Version)
	}
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      d.info,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		Instructions:    "Todoist task management tools. Call get_daily_overview for a summary of today's work.",
	}, nil
}

func (d *Dispatcher) handleCallTool(ctx context.Context, machine *fsm.Machine, params json.RawMessage) (interface{}, error) {
	var callParams CallToolParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		_ = machine.Fire(ctx, state.EventArgsRejected)
		return nil, mcperrors.NewInvalidParamsError("tools/call params are not valid JSON", "", err)
	}
	if callParams.Name == "" {
		_ = machine.Fire(ctx, state.EventArgsRejected)
		return nil, mcperrors.NewInvalidParamsError("tool name must not be empty", "name", nil)
	}

	if err := d.validator.Validate(ctx, callParams.Name, callParams.Arguments); err != nil {
		_ = machine.Fire(ctx, state.EventArgsRejected)
		return nil, err
	}
	_ = machine.Fire(ctx, state.EventArgsValidated)
	_ = machine.Fire(ctx, state.EventHandlerStarted)

	result, err := d.service.CallTool(ctx, callParams.Name, callParams.Arguments)
	if err != nil {
		_ = machine.Fire(ctx, state.EventHandlerFailed)
		return nil, err
	}
	_ = machine.Fire(ctx, state.EventHandlerSucceeded)
	return result, nil
}

func (d *Dispatcher) successResponse(id json.RawMessage, result interface{}) ([]byte, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return d.errorResponse(id, mcperrors.NewInternalError("failed to marshal result", err))
	}
	resp := Response{JSONRPC: JSONRPCVersion, ID: id, Result: resultJSON}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response envelope")
	}
	return respJSON, nil
}

func (d *Dispatcher) errorResponse(id json.RawMessage, dispatchErr error) ([]byte, error) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	code, message, data := mcperrors.MapToJSONRPC(dispatchErr)
	errObj := &ErrorObject{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := Response{JSONRPC: JSONRPCVersion, ID: id, Error: errObj}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal error response envelope")
	}
	return respJSON, nil
}
