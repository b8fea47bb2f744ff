package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/callmesh/agent"
	"github.com/hupe1980/callmesh/model"
	"github.com/hupe1980/callmesh/server"
	"github.com/hupe1980/callmesh/swaig"
)

func newTestAgentServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := server.New(func(o *server.Options) {
		o.AuthUser = "agent"
		o.AuthPassword = "secret"
	})

	a := agent.New("support", "/")
	a.AddSection(agent.Section{Title: "Role", Body: "You help customers with billing."})
	require.NoError(t, a.Tool(
		"lookup_invoice",
		"Look up an invoice by number",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"invoice_number": map[string]any{"type": "string"},
			},
			"required": []string{"invoice_number"},
		},
		func(_ *swaig.CallContext, args map[string]any) (*swaig.Result, error) {
			return swaig.NewResult("Invoice " + args["invoice_number"].(string) + " is paid."), nil
		},
	))
	require.NoError(t, srv.Register(a))

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(ts *httptest.Server) *Client {
	return NewClient(ts.URL, "agent", "secret", 5*time.Second)
}

func TestClientListTools(t *testing.T) {
	ts := newTestAgentServer(t)

	decls, err := newTestClient(ts).ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "lookup_invoice", decls[0].Function)
	assert.Equal(t, "Look up an invoice by number", decls[0].Description)
}

func TestClientFetchDocument(t *testing.T) {
	ts := newTestAgentServer(t)

	doc, err := newTestClient(ts).FetchDocument(context.Background())
	require.NoError(t, err)

	ai, err := ExtractAI(doc)
	require.NoError(t, err)
	assert.Contains(t, ai.Prompt.Text, "## Role")
	require.NotNil(t, ai.SWAIG)
	assert.Contains(t, ai.SWAIG.Defaults.WebHookURL, "/swaig")
}

func TestClientExec(t *testing.T) {
	ts := newTestAgentServer(t)

	result, err := newTestClient(ts).Exec(context.Background(), "call-1", "lookup_invoice",
		map[string]any{"invoice_number": "INV-7"})
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-7 is paid.", result.Response)
}

func TestClientExecUnknownFunctionSpeakable(t *testing.T) {
	ts := newTestAgentServer(t)

	result, err := newTestClient(ts).Exec(context.Background(), "", "missing", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Response, "couldn't complete")
}

func TestClientBadCredentials(t *testing.T) {
	ts := newTestAgentServer(t)

	c := NewClient(ts.URL, "agent", "wrong", 5*time.Second)
	_, err := c.FetchDocument(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestExtractAINoAIVerb(t *testing.T) {
	_, err := ExtractAI([]byte(`{"version":"1.0.0","sections":{"main":[{"answer":{}}]}}`))
	assert.Error(t, err)
}

func TestChatDrivesToolCalls(t *testing.T) {
	ts := newTestAgentServer(t)

	m := model.NewMockModel("mock", "test")
	m.QueueResponse(model.Response{
		ToolCalls:    []model.ToolCall{{ID: "tc-1", Name: "lookup_invoice", Arguments: `{"invoice_number":"INV-7"}`}},
		FinishReason: "tool_calls",
	})
	m.QueueResponse(model.Response{Text: "Your invoice INV-7 is fully paid.", FinishReason: "stop"})

	flags := &rootFlags{url: ts.URL, user: "agent", password: "secret", timeout: 5 * time.Second}

	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("what about invoice INV-7?\n"))
	cmd.SetContext(context.Background())

	require.NoError(t, runChat(cmd, flags, m))
	assert.Contains(t, out.String(), "Your invoice INV-7 is fully paid.")
	assert.Contains(t, errOut.String(), "lookup_invoice")
}

func TestListToolsCommandOutput(t *testing.T) {
	ts := newTestAgentServer(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"list-tools", "--url", ts.URL, "--password", "secret"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "lookup_invoice")
	assert.Contains(t, out.String(), "invoice_number")
}

func TestListToolsCommandSortsProperties(t *testing.T) {
	srv := server.New(func(o *server.Options) {
		o.AuthUser = "agent"
		o.AuthPassword = "secret"
	})
	a := agent.New("support", "/")
	require.NoError(t, a.Tool("update_address", "Update the shipping address",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"zip":    map[string]any{"type": "string"},
				"city":   map[string]any{"type": "string"},
				"street": map[string]any{"type": "string"},
			},
		},
		func(_ *swaig.CallContext, _ map[string]any) (*swaig.Result, error) {
			return swaig.NewResult("ok"), nil
		}))
	require.NoError(t, srv.Register(a))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"list-tools", "--url", ts.URL, "--password", "secret"})
	require.NoError(t, root.Execute())

	text := out.String()
	city := strings.Index(text, "city")
	street := strings.Index(text, "street")
	zip := strings.Index(text, "zip")
	require.NotEqual(t, -1, city)
	assert.Less(t, city, street)
	assert.Less(t, street, zip)
}

func TestDumpSWMLCommandOutput(t *testing.T) {
	ts := newTestAgentServer(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--dump-swml", "--url", ts.URL, "--password", "secret"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"version": "1.0.0"`)
	assert.Contains(t, out.String(), `"ai"`)
}
