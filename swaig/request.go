package swaig

import "encoding/json"

// FunctionRequest is the webhook payload posted by the platform when the
// model calls a declared function.
type FunctionRequest struct {
	Function    string         `json:"function"`
	Argument    Argument       `json:"argument"`
	CallID      string         `json:"call_id,omitempty"`
	FunctionID  string         `json:"id,omitempty"`
	ProjectID   string         `json:"project_id,omitempty"`
	SpaceID     string         `json:"space_id,omitempty"`
	GlobalData  map[string]any `json:"global_data,omitempty"`
	ContentType string         `json:"content_type,omitempty"`
	Version     string         `json:"version,omitempty"`
}

// Argument carries the model-produced arguments in both parsed and raw form.
type Argument struct {
	Parsed []map[string]any `json:"parsed,omitempty"`
	Raw    string           `json:"raw,omitempty"`
}

// Args returns the effective argument map: the merged parsed entries when
// present, otherwise a best-effort decode of the raw payload. An empty map is
// returned when neither form yields arguments.
func (a Argument) Args() map[string]any {
	if len(a.Parsed) > 0 {
		merged := map[string]any{}
		for _, entry := range a.Parsed {
			for k, v := range entry {
				merged[k] = v
			}
		}
		return merged
	}
	if a.Raw != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(a.Raw), &decoded); err == nil {
			return decoded
		}
	}
	return map[string]any{}
}
