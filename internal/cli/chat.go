package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/callmesh/model"
	"github.com/hupe1980/callmesh/model/anthropic"
	"github.com/hupe1980/callmesh/model/openai"
	"github.com/hupe1980/callmesh/swml"
)

// maxToolRounds bounds tool-call loops per user turn so a misbehaving model
// cannot spin forever against the agent.
const maxToolRounds = 8

func newChatCommand(flags *rootFlags) *cobra.Command {
	var (
		provider  string
		modelName string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Simulate a conversation with the agent through a real model",
		Long: `chat fetches the agent's SWML document, hands its prompt and SWAIG function
declarations to a language model and relays the model's tool calls back to
the agent's SWAIG endpoint, approximating what happens on a live call.`,
		Example: `  swaig-test chat --provider openai
  swaig-test chat --provider anthropic --model claude-3-5-sonnet-20241022`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newModel(provider, modelName)
			if err != nil {
				return err
			}
			return runChat(cmd, flags, m)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "openai", "Model provider (openai or anthropic)")
	cmd.Flags().StringVar(&modelName, "model", "", "Model name (provider default when empty)")

	return cmd
}

func newModel(provider, name string) (model.Model, error) {
	switch provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if name != "" {
				o.Model = name
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if name != "" {
				o.Model = anthropicsdk.Model(name)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", provider)
	}
}

func runChat(cmd *cobra.Command, flags *rootFlags, m model.Model) error {
	ctx := cmd.Context()
	client := newClientFromFlags(flags)

	doc, err := client.FetchDocument(ctx)
	if err != nil {
		return err
	}
	ai, err := ExtractAI(doc)
	if err != nil {
		return err
	}

	var instructions string
	if ai.Prompt != nil {
		instructions = ai.Prompt.Text
	}
	tools := toolDefinitions(ai)

	out := cmd.OutOrStdout()
	info := m.Info()
	fmt.Fprintf(out, "Chatting with agent at %s via %s/%s. %d functions available. Ctrl-D to quit.\n",
		flags.url, info.Provider, info.Name, len(tools))

	callID := uuid.NewString()
	var messages []model.Message

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		messages = append(messages, model.Message{Role: model.RoleUser, Text: line})

		reply, updated, err := converse(ctx, cmd, client, m, callID, instructions, tools, messages)
		if err != nil {
			return err
		}
		messages = updated
		fmt.Fprintln(out, reply)
	}
	return scanner.Err()
}

// converse runs one user turn: generate, execute any tool calls against the
// agent and feed the results back until the model produces plain text.
func converse(
	ctx context.Context,
	cmd *cobra.Command,
	client *Client,
	m model.Model,
	callID, instructions string,
	tools []model.ToolDefinition,
	messages []model.Message,
) (string, []model.Message, error) {
	for round := 0; round < maxToolRounds; round++ {
		resp, err := m.Generate(ctx, model.Request{
			Instructions: instructions,
			Messages:     messages,
			Tools:        tools,
		})
		if err != nil {
			return "", messages, err
		}
		if len(resp.ToolCalls) == 0 {
			messages = append(messages, model.Message{Role: model.RoleAssistant, Text: resp.Text})
			return resp.Text, messages, nil
		}

		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, tc := range resp.ToolCalls {
			args := map[string]any{}
			if tc.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					return "", messages, fmt.Errorf("parse tool arguments for %s: %w", tc.Name, err)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "[call] %s %s\n", tc.Name, tc.Arguments)
			result, err := client.Exec(ctx, callID, tc.Name, args)
			if err != nil {
				return "", messages, err
			}
			messages = append(messages, model.Message{
				Role:       model.RoleTool,
				ToolCallID: tc.ID,
				Text:       result.Response,
			})
		}
	}
	return "", messages, fmt.Errorf("model exceeded %d tool rounds in one turn", maxToolRounds)
}

// toolDefinitions converts SWAIG declarations into model tool definitions.
func toolDefinitions(ai *swml.AI) []model.ToolDefinition {
	if ai.SWAIG == nil {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(ai.SWAIG.Functions))
	for _, decl := range ai.SWAIG.Functions {
		defs = append(defs, model.ToolDefinition{
			Name:        decl.Function,
			Description: decl.Description,
			Parameters:  decl.Parameters,
		})
	}
	return defs
}
