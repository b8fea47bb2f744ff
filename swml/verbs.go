package swml

// Answer picks up an inbound call. MaxDuration caps the call length in seconds.
type Answer struct {
	MaxDuration int `json:"max_duration,omitempty"`
}

func (Answer) verbName() string { return "answer" }

// Hangup terminates the call with an optional reason (hangup, busy, decline).
type Hangup struct {
	Reason string `json:"reason,omitempty"`
}

func (Hangup) verbName() string { return "hangup" }

// Play plays media into the call. URL points at an audio resource or a
// say: / silence: pseudo-URL understood by the platform.
type Play struct {
	URL    string   `json:"url,omitempty"`
	URLs   []string `json:"urls,omitempty"`
	Volume float64  `json:"volume,omitempty"`
}

func (Play) verbName() string { return "play" }

// RecordCall starts background call recording. ControlID correlates the
// recording for a later StopRecordCall.
type RecordCall struct {
	ControlID string `json:"control_id,omitempty"`
	Format    string `json:"format,omitempty"` // wav or mp3
	Stereo    bool   `json:"stereo,omitempty"` // separate caller/agent channels
	Direction string `json:"direction,omitempty"`
	Beep      bool   `json:"beep,omitempty"`
}

func (RecordCall) verbName() string { return "record_call" }

// StopRecordCall stops a recording previously started with RecordCall.
type StopRecordCall struct {
	ControlID string `json:"control_id,omitempty"`
}

func (StopRecordCall) verbName() string { return "stop_record_call" }

// Transfer hands the call to another SWML section or external destination.
type Transfer struct {
	Dest string `json:"dest"`
}

func (Transfer) verbName() string { return "transfer" }

// PayParameter is an extra name/value pair forwarded to the payment connector.
type PayParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PayPrompt overrides a spoken prompt for one step of the payment IVR flow.
type PayPrompt struct {
	For     string   `json:"for"`
	Actions []string `json:"actions,omitempty"`
}

// Pay collects payment details over IVR and submits them to a payment
// connector. Card data stays inside the platform; the agent only receives the
// result via the pay_result variable.
type Pay struct {
	PaymentConnectorURL string         `json:"payment_connector_url"`
	InputMethod         string         `json:"input_method,omitempty"` // dtmf or voice
	StatusURL           string         `json:"status_url,omitempty"`
	PaymentMethod       string         `json:"payment_method,omitempty"`
	Timeout             int            `json:"timeout,omitempty"`
	MaxAttempts         int            `json:"max_attempts,omitempty"`
	SecurityCode        bool           `json:"security_code,omitempty"`
	PostalCode          bool           `json:"postal_code,omitempty"`
	MinPostalCodeLength int            `json:"min_postal_code_length,omitempty"`
	TokenType           string         `json:"token_type,omitempty"`
	ChargeAmount        string         `json:"charge_amount,omitempty"`
	Currency            string         `json:"currency,omitempty"`
	Language            string         `json:"language,omitempty"`
	Voice               string         `json:"voice,omitempty"`
	Description         string         `json:"description,omitempty"`
	ValidCardTypes      string         `json:"valid_card_types,omitempty"`
	Parameters          []PayParameter `json:"parameters,omitempty"`
	Prompts             []PayPrompt    `json:"prompts,omitempty"`
}

func (Pay) verbName() string { return "pay" }
