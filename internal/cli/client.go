package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/callmesh/swaig"
	"github.com/hupe1980/callmesh/swml"
)

// Client talks to a running agent over HTTP: it fetches the SWML document
// the agent would serve to the platform and invokes SWAIG functions the way
// the platform would.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

// NewClient builds a client for an agent served at baseURL.
func NewClient(baseURL, user, password string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchDocument retrieves the raw SWML document.
func (c *Client) FetchDocument(ctx context.Context) ([]byte, error) {
	body := map[string]any{"call": map[string]any{"call_id": uuid.NewString()}}
	raw, err := c.post(ctx, c.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	return raw, nil
}

// documentEnvelope is the subset of the SWML document the client inspects.
type documentEnvelope struct {
	Version  string                       `json:"version"`
	Sections map[string][]json.RawMessage `json:"sections"`
}

// ExtractAI parses the AI verb out of a rendered SWML document.
func ExtractAI(doc []byte) (*swml.AI, error) {
	var envelope documentEnvelope
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	for _, raw := range envelope.Sections[swml.MainSection] {
		var verb map[string]json.RawMessage
		if err := json.Unmarshal(raw, &verb); err != nil {
			continue
		}
		aiRaw, ok := verb["ai"]
		if !ok {
			continue
		}
		var ai swml.AI
		if err := json.Unmarshal(aiRaw, &ai); err != nil {
			return nil, fmt.Errorf("parse ai verb: %w", err)
		}
		return &ai, nil
	}
	return nil, fmt.Errorf("document has no ai verb")
}

// ListTools fetches the document and returns the declared SWAIG functions.
func (c *Client) ListTools(ctx context.Context) ([]swml.FunctionDecl, error) {
	doc, err := c.FetchDocument(ctx)
	if err != nil {
		return nil, err
	}
	ai, err := ExtractAI(doc)
	if err != nil {
		return nil, err
	}
	if ai.SWAIG == nil {
		return nil, nil
	}
	return ai.SWAIG.Functions, nil
}

// ExecResult is the decoded SWAIG function response.
type ExecResult struct {
	Response string           `json:"response"`
	Action   []map[string]any `json:"action,omitempty"`
}

// Exec invokes a SWAIG function with the given arguments.
func (c *Client) Exec(ctx context.Context, callID, function string, args map[string]any) (*ExecResult, error) {
	if callID == "" {
		callID = uuid.NewString()
	}
	req := swaig.FunctionRequest{
		Function:   function,
		CallID:     callID,
		FunctionID: uuid.NewString(),
		Argument:   swaig.Argument{Parsed: []map[string]any{args}},
	}
	raw, err := c.post(ctx, c.baseURL+"/swaig", req)
	if err != nil {
		return nil, fmt.Errorf("exec %s: %w", function, err)
	}
	var result ExecResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
