package swaig

import (
	"context"
	"encoding/json"

	"github.com/hupe1980/callmesh/logging"
)

// CallContext carries per-invocation state into a Function. It exposes the
// call identity, a snapshot of the call's global data, the raw webhook payload
// and a logger pre-tagged with call correlation fields.
//
// The global data map is a snapshot taken when the webhook arrived; functions
// mutate global data by returning SetGlobalData / UnsetGlobalData actions on
// the Result rather than writing to the snapshot.
type CallContext struct {
	ctx            context.Context
	callID         string
	functionCallID string
	baseURL        string
	globalData     map[string]any
	raw            json.RawMessage
	logger         logging.Logger
}

// NewCallContext creates a CallContext bound to a call and function call ID.
func NewCallContext(ctx context.Context, callID, functionCallID string) *CallContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CallContext{
		ctx:            ctx,
		callID:         callID,
		functionCallID: functionCallID,
		globalData:     map[string]any{},
		logger:         logging.NoOpLogger{},
	}
}

// Context returns the request-scoped context for cancellation and deadlines.
func (c *CallContext) Context() context.Context { return c.ctx }

// CallID returns the platform call identifier.
func (c *CallContext) CallID() string { return c.callID }

// FunctionCallID correlates the model's function call with its response.
func (c *CallContext) FunctionCallID() string { return c.functionCallID }

// BaseURL returns the externally reachable base URL of the agent serving
// this call, derived from the public URL or proxy headers. Functions use it
// to build callback URLs (payment connectors, status webhooks).
func (c *CallContext) BaseURL() string { return c.baseURL }

// GlobalData returns the global data snapshot for this invocation.
func (c *CallContext) GlobalData() map[string]any { return c.globalData }

// GlobalValue returns a single global data value and an existence flag.
func (c *CallContext) GlobalValue(key string) (any, bool) {
	v, ok := c.globalData[key]
	return v, ok
}

// Raw returns the unparsed webhook payload for functions that need fields
// outside of the declared schema.
func (c *CallContext) Raw() json.RawMessage { return c.raw }

// Logger returns the invocation logger (never nil).
func (c *CallContext) Logger() logging.Logger { return c.logger }

// WithGlobalData replaces the global data snapshot.
func (c *CallContext) WithGlobalData(data map[string]any) *CallContext {
	if data != nil {
		c.globalData = data
	}
	return c
}

// WithBaseURL attaches the externally reachable base URL of the agent.
func (c *CallContext) WithBaseURL(url string) *CallContext {
	c.baseURL = url
	return c
}

// WithRaw attaches the unparsed webhook payload.
func (c *CallContext) WithRaw(raw json.RawMessage) *CallContext {
	c.raw = raw
	return c
}

// WithLogger attaches a logger; nil values are ignored.
func (c *CallContext) WithLogger(logger logging.Logger) *CallContext {
	if logger != nil {
		c.logger = logger
	}
	return c
}
