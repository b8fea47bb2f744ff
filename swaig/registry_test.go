package swaig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoFunction(name string) Function {
	return NewFunctionTool(name, "Echo "+name, map[string]any{"type": "object"}, func(_ *CallContext, _ map[string]any) (*Result, error) {
		return NewResult(name), nil
	})
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoFunction("get_consent")))
	require.NoError(t, reg.Register(echoFunction("process_payment")))

	fn, ok := reg.Lookup("get_consent")
	assert.True(t, ok)
	assert.Equal(t, "get_consent", fn.Name())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, reg.Len())
}

func TestRegistryRejectsDuplicatesAndEmptyNames(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoFunction("get_consent")))
	assert.Error(t, reg.Register(echoFunction("get_consent")))
	assert.Error(t, reg.Register(echoFunction("")))
}

func TestRegistryDeclarationsPreserveOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoFunction("b_second")))
	require.NoError(t, reg.Register(echoFunction("a_first")))

	decls := reg.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "b_second", decls[0].Function)
	assert.Equal(t, "a_first", decls[1].Function)
	assert.Equal(t, "Echo b_second", decls[0].Description)
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewFunctionTool(
		"greet",
		"Greet the caller",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
			"required": []string{"name"},
		},
		func(_ *CallContext, args map[string]any) (*Result, error) {
			return NewResult("Hello " + args["name"].(string)), nil
		},
	)))

	cc := NewCallContext(context.Background(), "call-1", "fc-1")
	result, err := reg.Dispatch(cc, &FunctionRequest{
		Function: "greet",
		Argument: Argument{Parsed: []map[string]any{{"name": "Ada"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", result.Response())

	// Raw fallback when parsed is absent
	result, err = reg.Dispatch(cc, &FunctionRequest{
		Function: "greet",
		Argument: Argument{Raw: `{"name":"Grace"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Grace", result.Response())
}

func TestRegistryDispatchUnknownFunction(t *testing.T) {
	reg := NewRegistry()
	cc := NewCallContext(context.Background(), "call-1", "fc-1")
	_, err := reg.Dispatch(cc, &FunctionRequest{Function: "missing"})
	require.Error(t, err)
	fnErr, ok := err.(*FunctionError)
	require.True(t, ok)
	assert.Equal(t, CodeFunctionNotFound, fnErr.Code)
}
