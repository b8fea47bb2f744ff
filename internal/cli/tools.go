package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newListToolsCommand(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list-tools",
		Short: "List the SWAIG functions a running agent declares",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return runListToolsJSON(cmd, flags)
			}
			return runListTools(cmd, flags)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw function declarations as JSON")

	return cmd
}

func runListTools(cmd *cobra.Command, flags *rootFlags) error {
	decls, err := newClientFromFlags(flags).ListTools(cmd.Context())
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No SWAIG functions declared.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Functions (%d):\n", len(decls))
	for _, d := range decls {
		fmt.Fprintf(out, "  %s %s\n", d.Function, d.Description)
		props, _ := d.Parameters["properties"].(map[string]any)
		required := requiredSet(d.Parameters)
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			prop, _ := props[name].(map[string]any)
			line := fmt.Sprintf("    %s (%v)", name, prop["type"])
			if enum, ok := prop["enum"].([]any); ok {
				line += fmt.Sprintf(" one of %v", enum)
			}
			if required[name] {
				line += " [required]"
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func runListToolsJSON(cmd *cobra.Command, flags *rootFlags) error {
	decls, err := newClientFromFlags(flags).ListTools(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(decls)
}

// requiredSet normalizes the schema's required list, which decodes as []any
// from JSON but may be []string when built in Go.
func requiredSet(schema map[string]any) map[string]bool {
	set := map[string]bool{}
	switch req := schema["required"].(type) {
	case []string:
		for _, name := range req {
			set[name] = true
		}
	case []any:
		for _, name := range req {
			if s, ok := name.(string); ok {
				set[s] = true
			}
		}
	}
	return set
}
