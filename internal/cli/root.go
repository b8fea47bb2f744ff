// Package cli implements the swaig-test command: a test harness for agents
// served by this framework. It fetches the SWML document a running agent
// would hand to the platform, lists the declared SWAIG functions, invokes
// them directly, or drives them through a real language model in an
// interactive chat.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

type rootFlags struct {
	url       string
	user      string
	password  string
	timeout   time.Duration
	listTools bool
	dumpSWML  bool
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "swaig-test",
		Short: "Test harness for SWAIG agents",
		Long: `swaig-test exercises a running agent the way the SignalWire platform would:
it fetches the agent's SWML document, lists the SWAIG functions it declares,
invokes functions with JSON arguments and simulates full conversations
through a language model.`,
		Example: `  # List the functions an agent declares
  swaig-test --url http://localhost:3000 --password secret --list-tools

  # Dump the generated SWML document
  swaig-test --url http://localhost:3000 --password secret --dump-swml

  # Invoke a function directly
  swaig-test exec process_payment --args '{"amount":"49.99"}'

  # Simulate a conversation through a real model
  swaig-test chat --provider openai`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case flags.listTools:
				return runListTools(cmd, flags)
			case flags.dumpSWML:
				return runDumpSWML(cmd, flags, true)
			default:
				return cmd.Help()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.url, "url", "http://localhost:3000", "Base URL of the running agent")
	pf.StringVar(&flags.user, "user", "agent", "Basic auth user")
	pf.StringVar(&flags.password, "password", "", "Basic auth password")
	pf.DurationVar(&flags.timeout, "timeout", 30*time.Second, "HTTP request timeout")

	// The two historically documented shortcuts live on the root command.
	rootCmd.Flags().BoolVar(&flags.listTools, "list-tools", false, "List the agent's SWAIG functions")
	rootCmd.Flags().BoolVar(&flags.dumpSWML, "dump-swml", false, "Print the agent's SWML document")

	rootCmd.AddCommand(newListToolsCommand(flags))
	rootCmd.AddCommand(newDumpSWMLCommand(flags))
	rootCmd.AddCommand(newExecCommand(flags))
	rootCmd.AddCommand(newChatCommand(flags))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newClientFromFlags(flags *rootFlags) *Client {
	return NewClient(flags.url, flags.user, flags.password, flags.timeout)
}
