package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hupe1980/callmesh/swaig"
	"github.com/hupe1980/callmesh/swml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentAgent(t *testing.T) *Agent {
	t.Helper()
	a := New("payment-agent", "/")
	a.SetParams(map[string]any{"record_call": true, "record_format": "mp3"})
	a.AddSection(Section{Title: "Role", Body: "You process payments for customers."})
	a.AddSection(Section{
		Title: "Recording Policy",
		Bullets: []string{
			"Disclose recording at call start",
			"Never ask customer to speak card numbers",
		},
	})
	a.AddLanguage("English", "en-US", "rime.spore")

	require.NoError(t, a.Tool(
		"get_consent",
		"Get recording consent from caller",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"consent_given": map[string]any{"type": "string", "enum": []any{"yes", "no"}},
			},
			"required": []string{"consent_given"},
		},
		func(_ *swaig.CallContext, args map[string]any) (*swaig.Result, error) {
			if args["consent_given"] == "yes" {
				return swaig.NewResult("Thank you for your consent.").
					SetGlobalData(map[string]any{"recording_consent": true}).
					RecordCall(swml.RecordCall{ControlID: "main", Stereo: true, Format: "mp3"}), nil
			}
			return swaig.NewResult("No problem, this call will not be recorded.").
				SetGlobalData(map[string]any{"recording_consent": false}), nil
		},
	))
	return a
}

func TestAgentRenderDocument(t *testing.T) {
	a := newPaymentAgent(t)

	doc, err := a.RenderDocument(context.Background(), &RenderInfo{
		CallID:  "call-1",
		BaseURL: "https://agent.example.com",
	})
	require.NoError(t, err)

	raw, err := doc.Render()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	main := decoded["sections"].(map[string]any)["main"].([]any)
	require.Len(t, main, 1)
	ai := main[0].(map[string]any)["ai"].(map[string]any)

	prompt := ai["prompt"].(map[string]any)["text"].(string)
	assert.Contains(t, prompt, "## Role")
	assert.Contains(t, prompt, "You process payments for customers.")
	assert.Contains(t, prompt, "- Disclose recording at call start")

	params := ai["params"].(map[string]any)
	assert.Equal(t, true, params["record_call"])
	assert.Equal(t, "mp3", params["record_format"])

	swaigBlock := ai["SWAIG"].(map[string]any)
	assert.Equal(t, "https://agent.example.com/swaig", swaigBlock["defaults"].(map[string]any)["web_hook_url"])
	fns := swaigBlock["functions"].([]any)
	require.Len(t, fns, 1)
	assert.Equal(t, "get_consent", fns[0].(map[string]any)["function"])
}

func TestAgentRenderDeterministic(t *testing.T) {
	a := newPaymentAgent(t)
	info := &RenderInfo{CallID: "call-1", BaseURL: "https://agent.example.com"}

	first, err := a.RenderDocument(context.Background(), info)
	require.NoError(t, err)
	second, err := a.RenderDocument(context.Background(), info)
	require.NoError(t, err)

	rawFirst, err := first.Render()
	require.NoError(t, err)
	rawSecond, err := second.Render()
	require.NoError(t, err)
	assert.Equal(t, string(rawFirst), string(rawSecond))
}

func TestAgentStartupVerbs(t *testing.T) {
	a := New("greeter", "/greeter")
	a.AddStartupVerb(swml.Answer{})
	a.AddStartupVerb(swml.Play{URL: "say:Welcome"})
	a.AddSection(Section{Title: "Role", Body: "Greet callers."})

	doc, err := a.RenderDocument(context.Background(), &RenderInfo{})
	require.NoError(t, err)

	verbs := doc.Verbs(swml.MainSection)
	require.Len(t, verbs, 3)
	assert.IsType(t, swml.Answer{}, verbs[0])
	assert.IsType(t, swml.Play{}, verbs[1])
	assert.IsType(t, swml.AI{}, verbs[2])
}

func TestAgentDynamicSections(t *testing.T) {
	a := New("dynamic", "/")
	a.AddSectionProvider(ProviderFunc(func(info *RenderInfo) ([]Section, error) {
		return []Section{{Title: "Caller", Body: "Call " + info.CallID}}, nil
	}))

	doc, err := a.RenderDocument(context.Background(), &RenderInfo{CallID: "call-42"})
	require.NoError(t, err)

	raw, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Call call-42")
}

func TestAgentPromptTemplating(t *testing.T) {
	a := New("templated", "/")
	a.AddSection(Section{Title: "Customer", Body: "You are speaking with {{.customer_name}}."})

	doc, err := a.RenderDocument(context.Background(), &RenderInfo{
		GlobalData: map[string]any{"customer_name": "Ada"},
	})
	require.NoError(t, err)

	raw, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "You are speaking with Ada.")
}

func TestAgentHandleFunction(t *testing.T) {
	a := newPaymentAgent(t)

	result, err := a.HandleFunction(context.Background(), &swaig.FunctionRequest{
		Function: "get_consent",
		CallID:   "call-1",
		Argument: swaig.Argument{Parsed: []map[string]any{{"consent_given": "yes"}}},
	}, "https://agent.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your consent.", result.Response())
	assert.Equal(t, map[string]any{"recording_consent": true}, result.GlobalDataDelta())
}

func TestAgentHandleFunctionUnknown(t *testing.T) {
	a := newPaymentAgent(t)

	_, err := a.HandleFunction(context.Background(), &swaig.FunctionRequest{Function: "missing"}, "")
	require.Error(t, err)
	fnErr, ok := err.(*swaig.FunctionError)
	require.True(t, ok)
	assert.Equal(t, swaig.CodeFunctionNotFound, fnErr.Code)
}

func TestAgentRedact(t *testing.T) {
	a := New("redacting", "/")
	a.MarkSensitive("card_token")

	out := a.Redact(map[string]any{"card_token": "tok_123", "amount": "49.99"})
	assert.Equal(t, "[redacted]", out["card_token"])
	assert.Equal(t, "49.99", out["amount"])
}
