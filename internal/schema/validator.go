// Package schema compiles and applies the JSON Schemas guarding tool
// arguments. Each registered tool contributes one parameter schema; inbound
// tools/call arguments are validated against the schema for the named tool
// before any handler runs.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aldante1/mcp-todoist/internal/logging"
	"github.com/aldante1/mcp-todoist/internal/mcp/mcperrors"
)

// Validator compiles tool parameter schemas and validates argument payloads
// against them. It is safe for concurrent use after registration.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
	logger  logging.Logger
}

// NewValidator creates an empty Validator.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Validator{
		schemas: make(map[string]*jsonschema.Schema),
		logger:  logger.WithField("component", "schema_validator"),
	}
}

// Register compiles the given JSON Schema document under the tool's name.
// Registering the same name twice replaces the earlier schema.
func (v *Validator) Register(toolName string, schemaJSON json.RawMessage) error {
	if toolName == "" {
		return errors.New("tool name must not be empty")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	resourceURL := fmt.Sprintf("tool://%s/input", toolName)
	if err := compiler.AddResource(resourceURL, strings.NewReader(string(schemaJSON))); err != nil {
		return errors.Wrapf(err, "failed to add schema resource for tool %q", toolName)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return errors.Wrapf(err, "failed to compile schema for tool %q", toolName)
	}

	v.mu.Lock()
	v.schemas[toolName] = compiled
	v.mu.Unlock()

	v.logger.Debug("Registered tool schema.", "toolName", toolName)
	return nil
}

// HasSchema reports whether a schema is registered under the given name.
func (v *Validator) HasSchema(toolName string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[toolName]
	return ok
}

// Validate checks the argument payload against the named tool's schema.
// A nil or empty payload is validated as an empty object, since tools with
// no required parameters accept absent arguments. Violations are returned as
// invalid-params errors naming the offending field.
func (v *Validator) Validate(ctx context.Context, toolName string, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "validation canceled")
	}

	v.mu.RLock()
	compiled, ok := v.schemas[toolName]
	v.mu.RUnlock()
	if !ok {
		return mcperrors.NewMethodNotFoundError(toolName)
	}

	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return mcperrors.NewInvalidParamsError("arguments are not valid JSON", "", err)
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			field, detail := describeViolation(valErr)
			message := fmt.Sprintf("invalid arguments for tool %q: %s", toolName, detail)
			return mcperrors.NewInvalidParamsError(message, field, err)
		}
		return mcperrors.NewInvalidParamsError(
			fmt.Sprintf("invalid arguments for tool %q", toolName), "", err)
	}
	return nil
}

// describeViolation walks to the most specific cause of a validation error
// and extracts the violated field path plus a human-readable detail.
func describeViolation(valErr *jsonschema.ValidationError) (field, detail string) {
	leaf := valErr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field = instancePathToField(leaf.InstanceLocation)
	if field != "" {
		detail = fmt.Sprintf("%s: %s", field, leaf.Message)
	} else {
		detail = leaf.Message
	}
	return field, detail
}

// instancePathToField converts a JSON Pointer instance location like
// "/tasks/0/priority" into the dotted field path "tasks.0.priority".
func instancePathToField(location string) string {
	trimmed := strings.TrimPrefix(location, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
