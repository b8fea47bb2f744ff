package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/callmesh/internal/util"
	"github.com/hupe1980/callmesh/logging"
	"github.com/hupe1980/callmesh/swaig"
	"github.com/hupe1980/callmesh/swml"
)

// RenderInfo carries per-request context into document rendering: the call
// identity, the externally reachable base URL of the agent and the current
// global data snapshot (used for prompt templating).
type RenderInfo struct {
	CallID     string
	BaseURL    string // scheme://host/route, no trailing slash
	GlobalData map[string]any
}

// WebHookURL derives the SWAIG webhook endpoint from the base URL.
func (ri *RenderInfo) WebHookURL() string {
	if ri.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(ri.BaseURL, "/") + "/swaig"
}

// Agent is a declarative definition of a conversational telephony agent:
// prompt sections, voice languages, AI params, global data and the SWAIG
// function surface. Configuration methods are typically called once during
// startup; all exported methods are goroutine-safe so late registration and
// concurrent rendering do not race.
type Agent struct {
	name  string
	route string

	mu           sync.RWMutex
	sections     []Section
	providers    []Provider
	startupVerbs []swml.Verb
	postPrompt   string
	params       map[string]any
	globalData   map[string]any
	languages    []swml.Language
	hints        []string
	pronounce    []swml.Pronounce
	sensitive    map[string]bool
	registry     *swaig.Registry
	logger       logging.Logger
}

// New constructs an agent served under the given route ("/" for root).
func New(name, route string) *Agent {
	if route == "" {
		route = "/"
	}
	return &Agent{
		name:       name,
		route:      route,
		params:     map[string]any{},
		globalData: map[string]any{},
		sensitive:  map[string]bool{},
		registry:   swaig.NewRegistry(),
		logger:     logging.NoOpLogger{},
	}
}

// Name returns the human-readable agent name.
func (a *Agent) Name() string { return a.name }

// Route returns the HTTP route the agent is served under.
func (a *Agent) Route() string { return a.route }

// SetLogger replaces the agent logger; nil values are ignored.
func (a *Agent) SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger = logger
}

// AddSection appends a static prompt section.
func (a *Agent) AddSection(s Section) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sections = append(a.sections, s)
	return a
}

// AddSectionProvider appends a dynamic prompt section source resolved per render.
func (a *Agent) AddSectionProvider(p Provider) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.providers = append(a.providers, p)
	return a
}

// SetPostPrompt sets the summary prompt evaluated after the call ends.
func (a *Agent) SetPostPrompt(text string) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.postPrompt = text
	return a
}

// SetParams merges AI runtime params (record_call, end_of_speech_timeout, ...).
func (a *Agent) SetParams(params map[string]any) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range params {
		a.params[k] = v
	}
	return a
}

// SetGlobalData merges initial global data shipped with the document.
func (a *Agent) SetGlobalData(data map[string]any) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range data {
		a.globalData[k] = v
	}
	return a
}

// AddLanguage appends a voice language.
func (a *Agent) AddLanguage(name, code, voice string) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.languages = append(a.languages, swml.Language{Name: name, Code: code, Voice: voice})
	return a
}

// AddLanguageSpec appends a fully specified language (fillers included).
func (a *Agent) AddLanguageSpec(lang swml.Language) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.languages = append(a.languages, lang)
	return a
}

// AddHints appends speech recognition hints.
func (a *Agent) AddHints(hints ...string) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hints = append(a.hints, hints...)
	return a
}

// AddPronunciation appends a pronunciation replacement rule.
func (a *Agent) AddPronunciation(replace, with string, ignoreCase bool) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pronounce = append(a.pronounce, swml.Pronounce{Replace: replace, With: with, IgnoreCase: ignoreCase})
	return a
}

// AddStartupVerb appends a verb rendered before the AI verb (answer, play, ...).
func (a *Agent) AddStartupVerb(v swml.Verb) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startupVerbs = append(a.startupVerbs, v)
	return a
}

// MarkSensitive registers global data keys whose values must be redacted in logs.
func (a *Agent) MarkSensitive(keys ...string) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range keys {
		a.sensitive[k] = true
	}
	return a
}

// Redact returns a copy of data with sensitive values replaced by "[redacted]".
func (a *Agent) Redact(data map[string]any) map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]any, len(data))
	for k, v := range data {
		if a.sensitive[k] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}

// RegisterFunction adds a SWAIG function to the agent's callable surface.
func (a *Agent) RegisterFunction(fn swaig.Function) error {
	return a.registry.Register(fn)
}

// Tool registers a plain Go func as a SWAIG function with an explicit schema.
// It is the ergonomic equivalent of decorating a handler in other SDKs.
func (a *Agent) Tool(
	name, description string,
	parameters map[string]any,
	fn func(callCtx *swaig.CallContext, args map[string]any) (*swaig.Result, error),
) error {
	return a.registry.Register(swaig.NewFunctionTool(name, description, parameters, fn))
}

// Registry exposes the function registry (used by the server and tests).
func (a *Agent) Registry() *swaig.Registry { return a.registry }

// InitialGlobalData returns a copy of the agent's declared global data.
func (a *Agent) InitialGlobalData() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]any, len(a.globalData))
	for k, v := range a.globalData {
		out[k] = v
	}
	return out
}

// renderPrompt flattens static sections plus provider output into prompt text,
// expanding template markers against the call's global data.
func (a *Agent) renderPrompt(info *RenderInfo) (string, error) {
	a.mu.RLock()
	sections := make([]Section, len(a.sections))
	copy(sections, a.sections)
	providers := make([]Provider, len(a.providers))
	copy(providers, a.providers)
	a.mu.RUnlock()

	for _, p := range providers {
		dynamic, err := p.Sections(info)
		if err != nil {
			return "", fmt.Errorf("resolve dynamic sections: %w", err)
		}
		sections = append(sections, dynamic...)
	}

	var sb strings.Builder
	for _, s := range sections {
		s.render(&sb, 0)
	}

	text := strings.TrimRight(sb.String(), "\n")
	state := info.GlobalData
	if state == nil {
		state = map[string]any{}
	}
	return util.RenderTemplate(text, state)
}

// RenderDocument produces the SWML document the platform executes for this
// agent. Output is deterministic for a fixed agent definition and RenderInfo.
func (a *Agent) RenderDocument(ctx context.Context, info *RenderInfo) (*swml.Document, error) {
	if info == nil {
		info = &RenderInfo{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	promptText, err := a.renderPrompt(info)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	ai := swml.AI{
		Prompt:    &swml.Prompt{Text: promptText},
		Languages: append([]swml.Language(nil), a.languages...),
		Hints:     append([]string(nil), a.hints...),
		Pronounce: append([]swml.Pronounce(nil), a.pronounce...),
	}

	if a.postPrompt != "" {
		ai.PostPrompt = &swml.Prompt{Text: a.postPrompt}
	}
	if len(a.params) > 0 {
		params := make(map[string]any, len(a.params))
		for k, v := range a.params {
			params[k] = v
		}
		ai.Params = params
	}

	globalData := make(map[string]any, len(a.globalData)+len(info.GlobalData))
	for k, v := range a.globalData {
		globalData[k] = v
	}
	for k, v := range info.GlobalData {
		globalData[k] = v
	}
	if len(globalData) > 0 {
		ai.GlobalData = globalData
	}

	if a.registry.Len() > 0 {
		ai.SWAIG = &swml.SWAIG{
			Functions: a.registry.Declarations(),
		}
		if url := info.WebHookURL(); url != "" {
			ai.SWAIG.Defaults = &swml.Defaults{WebHookURL: url}
		}
	}

	doc := swml.NewDocument()
	for _, v := range a.startupVerbs {
		doc.Add(v)
	}
	doc.Add(ai)

	return doc, nil
}

// HandleFunction dispatches a SWAIG webhook payload to the matching function.
// baseURL is the externally reachable base URL of the agent for this request
// (empty when unknown). The returned error is always a *swaig.FunctionError
// so the server can build a speakable error response with a stable code.
func (a *Agent) HandleFunction(ctx context.Context, req *swaig.FunctionRequest, baseURL string) (*swaig.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	logger := a.logger
	a.mu.RUnlock()

	callCtx := swaig.NewCallContext(ctx, req.CallID, req.FunctionID).
		WithGlobalData(req.GlobalData).
		WithBaseURL(baseURL).
		WithLogger(logger)

	return a.registry.Dispatch(callCtx, req)
}
