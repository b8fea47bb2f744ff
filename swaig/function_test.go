package swaig

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/callmesh/internal/util"
	"github.com/stretchr/testify/assert"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
	D string `json:"d" enum:"yes,no" description:"Enum field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	assert.Contains(t, props, "d")

	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a", "d"}, req)

	dProp, _ := props["d"].(map[string]any)
	assert.Equal(t, []any{"yes", "no"}, dProp["enum"])
}

func TestValidateArguments(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
			"mode": map[string]any{
				"type": "string",
				"enum": []any{"yes", "no"},
			},
		},
		// Use []any to mirror JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateArguments(map[string]any{"x": 5, "mode": "yes"}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateArguments(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = util.ValidateArguments(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// JSON numbers decode to float64 and whole values pass integer checks
	err = util.ValidateArguments(map[string]any{"x": 5.0}, schema)
	assert.NoError(t, err)

	// Enum violation
	err = util.ValidateArguments(map[string]any{"x": 1, "mode": "maybe"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "mode", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": "string"},
		},
		"required": []string{"amount"},
	}

	payTool := NewFunctionTool("process_payment", "Process payment", params, func(_ *CallContext, args map[string]any) (*Result, error) {
		amount := args["amount"].(string)
		return NewResult("Charging " + amount), nil
	})

	cc := NewCallContext(context.Background(), "call-1", "fc-1")
	result, err := payTool.Call(cc, map[string]any{"amount": "49.99"})
	assert.NoError(t, err)
	assert.Equal(t, "Charging 49.99", result.Response())
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": "string"},
		},
		"required": []any{"amount"},
	}
	tool := NewFunctionTool("test", "Test", params, func(_ *CallContext, _ map[string]any) (*Result, error) {
		return NewResult("ok"), nil
	})

	cc := NewCallContext(context.Background(), "call-2", "fc-2")
	_, err := tool.Call(cc, map[string]any{})
	assert.Error(t, err)
	fnErr, ok := err.(*FunctionError)
	assert.True(t, ok)
	assert.Equal(t, CodeValidationError, fnErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	tool := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object"}, func(_ *CallContext, _ map[string]any) (*Result, error) {
		return nil, errors.New("downstream unavailable")
	})

	cc := NewCallContext(context.Background(), "call-3", "fc-3")
	_, err := tool.Call(cc, map[string]any{})
	assert.Error(t, err)
	fnErr, ok := err.(*FunctionError)
	assert.True(t, ok)
	assert.Equal(t, CodeExecutionError, fnErr.Code)
	assert.Contains(t, fnErr.Message, "downstream unavailable")
}

func TestFunctionTool_CustomErrorForwarded(t *testing.T) {
	custom := NewFunctionError("boom", "card declined", "CARD_DECLINED")
	tool := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object"}, func(_ *CallContext, _ map[string]any) (*Result, error) {
		return nil, custom
	})

	cc := NewCallContext(context.Background(), "call-4", "fc-4")
	_, err := tool.Call(cc, map[string]any{})
	assert.Same(t, custom, err)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type consentArgs struct {
		ConsentGiven string `json:"consent_given" enum:"yes,no" description:"Whether caller consents to recording"`
	}

	tool := NewFunctionToolFromStruct("get_consent", "Get recording consent", consentArgs{}, func(_ *CallContext, args map[string]any) (*Result, error) {
		return NewResult("noted"), nil
	})

	props := tool.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "consent_given")

	cc := NewCallContext(context.Background(), "call-5", "fc-5")
	_, err := tool.Call(cc, map[string]any{"consent_given": "maybe"})
	assert.Error(t, err)
	fnErr, ok := err.(*FunctionError)
	assert.True(t, ok)
	assert.Equal(t, CodeValidationError, fnErr.Code)
}

func TestCallContextDefaults(t *testing.T) {
	cc := NewCallContext(context.Background(), "call-6", "fc-6")
	assert.Equal(t, "call-6", cc.CallID())
	assert.Equal(t, "fc-6", cc.FunctionCallID())
	assert.NotNil(t, cc.Logger())
	assert.NotNil(t, cc.GlobalData())

	cc.WithGlobalData(map[string]any{"recording_consent": true})
	v, ok := cc.GlobalValue("recording_consent")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}
