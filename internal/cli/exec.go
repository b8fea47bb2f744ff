package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newExecCommand(flags *rootFlags) *cobra.Command {
	var (
		argsJSON string
		callID   string
	)

	cmd := &cobra.Command{
		Use:   "exec <function>",
		Short: "Invoke one SWAIG function the way the platform would",
		Example: `  swaig-test exec get_recording_consent --args '{"consent_given":"yes"}'
  swaig-test exec process_payment --args '{"amount":"49.99"}' --call-id call-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fnArgs := map[string]any{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &fnArgs); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}

			result, err := newClientFromFlags(flags).Exec(cmd.Context(), callID, args[0], fnArgs)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "", "Function arguments as a JSON object")
	cmd.Flags().StringVar(&callID, "call-id", "", "Call ID to invoke under (random when empty)")

	return cmd
}
