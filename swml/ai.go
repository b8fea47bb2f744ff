package swml

// AI hands the call to the platform-hosted language model. The verb bundles
// the rendered prompt, voice languages, runtime params and the SWAIG block
// declaring which functions the model may call back into the agent with.
type AI struct {
	Prompt        *Prompt        `json:"prompt,omitempty"`
	PostPrompt    *Prompt        `json:"post_prompt,omitempty"`
	PostPromptURL string         `json:"post_prompt_url,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	SWAIG         *SWAIG         `json:"SWAIG,omitempty"`
	Languages     []Language     `json:"languages,omitempty"`
	Hints         []string       `json:"hints,omitempty"`
	Pronounce     []Pronounce    `json:"pronounce,omitempty"`
	GlobalData    map[string]any `json:"global_data,omitempty"`
}

func (AI) verbName() string { return "ai" }

// Prompt carries the instruction text plus optional sampling controls.
type Prompt struct {
	Text        string   `json:"text,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

// SWAIG declares the callable function surface exposed to the model.
type SWAIG struct {
	Defaults        *Defaults      `json:"defaults,omitempty"`
	NativeFunctions []string       `json:"native_functions,omitempty"`
	Includes        []Include      `json:"includes,omitempty"`
	Functions       []FunctionDecl `json:"functions,omitempty"`
}

// Defaults supplies fallback settings applied to every declared function.
type Defaults struct {
	WebHookURL string `json:"web_hook_url,omitempty"`
}

// Include pulls remote function declarations from another SWAIG server.
type Include struct {
	URL       string   `json:"url"`
	Functions []string `json:"functions,omitempty"`
}

// FunctionDecl is the wire form of a single SWAIG function declaration.
type FunctionDecl struct {
	Function    string         `json:"function"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	WebHookURL  string         `json:"web_hook_url,omitempty"`
	Active      *bool          `json:"active,omitempty"`
}

// Language configures a voice the agent speaks, with optional filler phrases
// played while functions execute.
type Language struct {
	Name            string   `json:"name"`
	Code            string   `json:"code"`
	Voice           string   `json:"voice,omitempty"`
	SpeechFillers   []string `json:"speech_fillers,omitempty"`
	FunctionFillers []string `json:"function_fillers,omitempty"`
}

// Pronounce replaces text with a phonetic form before speech synthesis.
type Pronounce struct {
	Replace    string `json:"replace"`
	With       string `json:"with"`
	IgnoreCase bool   `json:"ignore_case,omitempty"`
}
