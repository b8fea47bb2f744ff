package swaig

import (
	"encoding/json"

	"github.com/hupe1980/callmesh/swml"
)

// Action is a single named side-effect attached to a Result. It serializes as
// a one-key object {"name": body} inside the result's action array.
type Action struct {
	Name string
	Body any
}

// MarshalJSON renders the action as {"name": body}.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{a.Name: a.Body})
}

// PayAction is the body of a "pay" action: the SWML pay configuration plus an
// optional instruction telling the model what to say once ${pay_result} is
// available.
type PayAction struct {
	swml.Pay
	AIResponse string `json:"ai_response,omitempty"`
}

// Result is the response a SWAIG function hands back to the platform. It
// carries the text spoken (or summarized) by the model plus an ordered list of
// actions executed by the platform. Builders return the receiver so calls
// chain fluently:
//
//	return swaig.NewResult("Thank you for your consent.").
//	  SetGlobalData(map[string]any{"recording_consent": true}).
//	  RecordCall(swml.RecordCall{ControlID: "main", Stereo: true, Format: "mp3"}), nil
type Result struct {
	response    string
	postProcess bool
	actions     []Action
}

// NewResult creates a Result with the given natural language response.
func NewResult(response string) *Result {
	return &Result{response: response}
}

// NewErrorResult creates a speakable result for a failed function so the
// model can relay the failure instead of going silent.
func NewErrorResult(message string) *Result {
	return &Result{response: message}
}

// Response returns the natural language response text.
func (r *Result) Response() string { return r.response }

// Actions returns the ordered action list.
func (r *Result) Actions() []Action {
	actions := make([]Action, len(r.actions))
	copy(actions, r.actions)
	return actions
}

// WithPostProcess marks the result for post-processing: the model speaks the
// response before the attached actions run.
func (r *Result) WithPostProcess(v bool) *Result {
	r.postProcess = v
	return r
}

// PostProcess reports whether post-processing was requested.
func (r *Result) PostProcess() bool { return r.postProcess }

// AddAction appends a raw named action. Prefer the typed helpers below.
func (r *Result) AddAction(name string, body any) *Result {
	r.actions = append(r.actions, Action{Name: name, Body: body})
	return r
}

// SetGlobalData merges key/value pairs into the call's global data.
func (r *Result) SetGlobalData(data map[string]any) *Result {
	return r.AddAction("set_global_data", data)
}

// UnsetGlobalData removes keys from the call's global data.
func (r *Result) UnsetGlobalData(keys ...string) *Result {
	return r.AddAction("unset_global_data", keys)
}

// ExecuteSWML attaches an inline SWML document executed in the call context.
func (r *Result) ExecuteSWML(doc *swml.Document) *Result {
	return r.AddAction("SWML", doc)
}

// RecordCall starts background call recording via an inline SWML document.
func (r *Result) RecordCall(rc swml.RecordCall) *Result {
	return r.ExecuteSWML(swml.NewDocument().Add(rc))
}

// StopRecordCall stops a recording previously started with RecordCall.
func (r *Result) StopRecordCall(controlID string) *Result {
	return r.ExecuteSWML(swml.NewDocument().Add(swml.StopRecordCall{ControlID: controlID}))
}

// Pay collects payment over IVR through the platform. Card data never reaches
// the agent or the model; the outcome surfaces as ${pay_result}. aiResponse
// tells the model how to react once the result is known.
func (r *Result) Pay(p swml.Pay, aiResponse string) *Result {
	return r.AddAction("pay", PayAction{Pay: p, AIResponse: aiResponse})
}

// PlayBackground plays media behind the conversation.
func (r *Result) PlayBackground(url string) *Result {
	return r.AddAction("play_background", map[string]any{"file": url})
}

// StopPlayback stops background media started with PlayBackground.
func (r *Result) StopPlayback() *Result {
	return r.AddAction("stop_playback", true)
}

// Hangup ends the call after the response is delivered.
func (r *Result) Hangup() *Result {
	return r.AddAction("hangup", true)
}

// ToggleFunctions enables or disables declared functions mid-call.
func (r *Result) ToggleFunctions(active bool, names ...string) *Result {
	toggles := make([]map[string]any, 0, len(names))
	for _, name := range names {
		toggles = append(toggles, map[string]any{"function": name, "active": active})
	}
	return r.AddAction("toggle_functions", toggles)
}

// GlobalDataDelta collapses all SetGlobalData / UnsetGlobalData actions into a
// single delta map (unset keys map to nil). The server applies this to the
// call store before replying.
func (r *Result) GlobalDataDelta() map[string]any {
	var delta map[string]any
	for _, a := range r.actions {
		switch a.Name {
		case "set_global_data":
			data, ok := a.Body.(map[string]any)
			if !ok {
				continue
			}
			if delta == nil {
				delta = map[string]any{}
			}
			for k, v := range data {
				delta[k] = v
			}
		case "unset_global_data":
			keys, ok := a.Body.([]string)
			if !ok {
				continue
			}
			if delta == nil {
				delta = map[string]any{}
			}
			for _, k := range keys {
				delta[k] = nil
			}
		}
	}
	return delta
}

// resultWire is the serialized form expected by the platform.
type resultWire struct {
	Response    string   `json:"response"`
	Action      []Action `json:"action,omitempty"`
	PostProcess bool     `json:"post_process,omitempty"`
}

// MarshalJSON renders {"response": "...", "action": [...], "post_process": true}.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultWire{
		Response:    r.response,
		Action:      r.actions,
		PostProcess: r.postProcess,
	})
}
