// Package mcperrors defines domain-specific error types and codes for the MCP
// layer. These errors carry structured context and map onto JSON-RPC error
// responses at the dispatcher boundary.
package mcperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode categorizes errors produced by the MCP layer.
type ErrorCode int

// JSON-RPC 2.0 standard codes plus server-defined codes in the -320xx range.
const (
	CodeParseError     ErrorCode = -32700
	CodeInvalidRequest ErrorCode = -32600
	CodeMethodNotFound ErrorCode = -32601
	CodeInvalidParams  ErrorCode = -32602
	CodeInternalError  ErrorCode = -32603

	// CodeUnauthorized rejects requests failing the bearer-credential check.
	CodeUnauthorized ErrorCode = -32001
	// CodeTodoistFailure surfaces remote task-API failures.
	CodeTodoistFailure ErrorCode = -32020
	// CodeUnsupported marks operations the remote API cannot perform.
	CodeUnsupported ErrorCode = -32021
)

// BaseError is the common base for the MCP error types. It embeds the standard
// error interface and adds a numeric code and key-value context.
type BaseError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the standard error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("MCPError (Code: %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("MCPError (Code: %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// As lets errors.As recover the embedded *BaseError from any wrapper type in
// this package. The wrappers embed BaseError by value, so a plain type
// assertion against *BaseError would never match; this hook, promoted onto
// every wrapper, closes that gap.
func (e *BaseError) As(target interface{}) bool {
	if p, ok := target.(**BaseError); ok {
		*p = e
		return true
	}
	return false
}

// WithContext adds a key-value pair to the error's context map and returns the
// error for chaining.
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ParseError represents a JSON parsing failure on the inbound message.
type ParseError struct{ BaseError }

// InvalidRequestError represents a malformed request envelope.
type InvalidRequestError struct{ BaseError }

// MethodNotFoundError represents an unrecognized method or tool name.
type MethodNotFoundError struct{ BaseError }

// InvalidParamsError represents arguments that fail a tool's parameter schema.
type InvalidParamsError struct{ BaseError }

// InternalError represents a failure inside a handler, including remote-API errors.
type InternalError struct{ BaseError }

// UnauthorizedError represents a missing or mismatched bearer credential.
type UnauthorizedError struct{ BaseError }

// TodoistError represents a failure reported by the Todoist API.
type TodoistError struct{ BaseError }

// UnsupportedOperationError marks operations the remote API cannot perform.
// These are deliberate, always-raised errors, not transient conditions.
type UnsupportedOperationError struct{ BaseError }

// NewParseError creates a JSON parse error (maps to -32700).
func NewParseError(message string, cause error) error {
	return &ParseError{BaseError{Code: CodeParseError, Message: message, Cause: errors.WithStack(cause)}}
}

// NewInvalidRequestError creates an invalid request structure error (maps to -32600).
func NewInvalidRequestError(message string, cause error) error {
	return &InvalidRequestError{BaseError{Code: CodeInvalidRequest, Message: message, Cause: errors.WithStack(cause)}}
}

// NewMethodNotFoundError creates an error for an unrecognized method (maps to -32601).
// The offending method name is carried in context for diagnostics.
func NewMethodNotFoundError(method string) error {
	err := &MethodNotFoundError{BaseError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("Method not found: %s", method),
	}}
	err.WithContext("method", method)
	return err
}

// NewInvalidParamsError creates an error for invalid parameters (maps to -32602).
// The violated field, when known, is carried in context.
func NewInvalidParamsError(message, field string, cause error) error {
	err := &InvalidParamsError{BaseError{Code: CodeInvalidParams, Message: message, Cause: errors.WithStack(cause)}}
	if field != "" {
		err.WithContext("field", field)
	}
	return err
}

// NewInternalError creates a generic internal server error (maps to -32603).
func NewInternalError(message string, cause error) error {
	return &InternalError{BaseError{Code: CodeInternalError, Message: message, Cause: errors.WithStack(cause)}}
}

// NewUnauthorizedError creates an unauthorized error (maps to -32001).
func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{BaseError{Code: CodeUnauthorized, Message: message}}
}

// NewTodoistError creates an error for a failed Todoist API interaction.
func NewTodoistError(message string, cause error) error {
	return &TodoistError{BaseError{Code: CodeTodoistFailure, Message: message, Cause: errors.WithStack(cause)}}
}

// NewUnsupportedOperationError creates an error for an operation the Todoist
// API cannot perform.
func NewUnsupportedOperationError(message string) error {
	return &UnsupportedOperationError{BaseError{Code: CodeUnsupported, Message: message}}
}

// MapToJSONRPC translates any error into JSON-RPC error response components.
// Unknown error types map to an internal error with the original message
// carried as diagnostic data; the caller never sees a raw Go error.
func MapToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	data = make(map[string]interface{})

	var baseErr *BaseError
	if !errors.As(err, &baseErr) {
		code = int(CodeInternalError)
		message = "Internal error."
		data["detail"] = err.Error()
		return code, message, data
	}

	switch baseErr.Code {
	case CodeParseError:
		code, message = int(CodeParseError), "Parse error."
	case CodeInvalidRequest:
		code, message = int(CodeInvalidRequest), "Invalid Request."
	case CodeMethodNotFound:
		code, message = int(CodeMethodNotFound), "Method not found."
	case CodeInvalidParams:
		code, message = int(CodeInvalidParams), "Invalid params."
	case CodeUnauthorized:
		code, message = int(CodeUnauthorized), "Unauthorized."
	case CodeTodoistFailure:
		code, message = int(CodeInternalError), "Internal error."
	case CodeUnsupported:
		code, message = int(CodeUnsupported), "Unsupported operation."
	default:
		code, message = int(CodeInternalError), "Internal error."
	}
	data["detail"] = baseErr.Message

	// Only context keys safe for client exposure are copied into data.
	for k, v := range baseErr.Context {
		switch k {
		case "method", "toolName", "field", "state":
			if _, exists := data[k]; !exists {
				data[k] = v
			}
		}
	}

	if len(data) == 0 {
		data = nil
	}
	return code, message, data
}
