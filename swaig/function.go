package swaig

import (
	"fmt"
	"time"

	"github.com/hupe1980/callmesh/internal/util"
)

// Function defines the interface for extending agents with callable capabilities.
//
// Functions are registered with agents and advertised to the platform model
// through the SWML AI verb. When the model decides to call one, the platform
// posts a FunctionRequest to the agent's SWAIG endpoint and the matching
// Function executes.
//
// Function implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names)
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe; a single instance serves concurrent calls
type Function interface {
	// Name returns the unique identifier for this function.
	Name() string

	// Description returns a human-readable description of what this function
	// does. It is provided to the model to help it decide when to call.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the function with parsed arguments and call context.
	// Arguments have already been validated against the declared schema.
	Call(callCtx *CallContext, args map[string]any) (*Result, error)
}

// ValidationError represents argument validation errors with detailed information.
type ValidationError = util.ValidationError

// FunctionError represents errors that occur during function dispatch or execution.
type FunctionError struct {
	Function string `json:"function"`          // Name of the function that failed
	Message  string `json:"message"`           // Error message
	Code     string `json:"code"`              // Error code for categorization
	Details  any    `json:"details,omitempty"` // Additional error details
}

// Error codes attached to FunctionError by the dispatch path.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeExecutionError   = "EXECUTION_ERROR"
	CodeFunctionNotFound = "FUNCTION_NOT_FOUND"
)

func (e *FunctionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("swaig error [%s] in %s: %s", e.Code, e.Function, e.Message)
	}
	return fmt.Sprintf("swaig error in %s: %s", e.Function, e.Message)
}

// NewFunctionError creates a new FunctionError with the specified details.
func NewFunctionError(function, message, code string) *FunctionError {
	return &FunctionError{
		Function: function,
		Message:  message,
		Code:     code,
	}
}

// FunctionTool is a generic adapter that exposes a plain Go function as a
// SWAIG Function.
//
// Responsibilities:
//   - Holds a JSON-Schema-like parameter specification
//   - Validates model supplied arguments against that schema before execution
//   - Invokes the wrapped func with a *CallContext giving access to the call
//     ID, global data snapshot and logger
//   - Normalizes error handling so callers receive *FunctionError with
//     consistent codes (custom codes preserved if the func returns
//     *FunctionError directly)
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	// Function identifier (snake_case recommended)
	name string
	// Human-readable description shown to the model
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// User supplied implementation
	fn func(callCtx *CallContext, args map[string]any) (*Result, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	consent := NewFunctionTool(
//	  "get_consent",
//	  "Get recording consent from caller",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "consent_given": map[string]any{"type": "string", "enum": []any{"yes", "no"}},
//	    },
//	    "required": []string{"consent_given"},
//	  },
//	  func(cc *swaig.CallContext, args map[string]any) (*swaig.Result, error) {
//	    ...
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(callCtx *CallContext, args map[string]any) (*Result, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers and produces
// a schema equivalent to util.CreateSchema(structType).
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(callCtx *CallContext, args map[string]any) (*Result, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique function name used in declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to the model.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *FunctionError for uniform downstream handling.
//
// Error Semantics:
//
//	*FunctionError (returned directly) -> forwarded unchanged
//	validation failure                 -> *FunctionError{Code: VALIDATION_ERROR}
//	other error                        -> *FunctionError{Code: EXECUTION_ERROR}
func (t *FunctionTool) Call(callCtx *CallContext, args map[string]any) (*Result, error) {
	logger := callCtx.Logger()
	start := time.Now()

	logger.Debug("swaig.call.start", "function", t.name, "call_id", callCtx.CallID())

	if err := util.ValidateArguments(args, t.parameters); err != nil {
		logger.Warn("swaig.call.validation_failed", "function", t.name, "error", err.Error())

		return nil, &FunctionError{
			Function: t.name,
			Message:  fmt.Sprintf("argument validation failed: %v", err),
			Code:     CodeValidationError,
			Details:  err,
		}
	}

	result, err := t.fn(callCtx, args)
	if err != nil {
		if fnErr, ok := err.(*FunctionError); ok { // Already a FunctionError -> just log and forward
			logger.Error("swaig.call.error", "function", t.name, "error", fnErr.Message)

			return nil, fnErr
		}

		logger.Error("swaig.call.error", "function", t.name, "error", err.Error())

		return nil, &FunctionError{
			Function: t.name,
			Message:  err.Error(),
			Code:     CodeExecutionError,
		}
	}

	logger.Info("swaig.call.success", "function", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
