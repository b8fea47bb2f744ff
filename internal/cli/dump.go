package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDumpSWMLCommand(flags *rootFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "dump-swml",
		Short: "Print the SWML document a running agent generates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDumpSWML(cmd, flags, !raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the document without indentation")

	return cmd
}

func runDumpSWML(cmd *cobra.Command, flags *rootFlags, indent bool) error {
	doc, err := newClientFromFlags(flags).FetchDocument(cmd.Context())
	if err != nil {
		return err
	}
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err == nil {
			doc = buf.Bytes()
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(bytes.TrimSpace(doc)))
	return nil
}
