// Package version implements `shoggoth version`.
package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/internal/buildinfo"
)

// NewCmd returns `shoggoth version`. The default output is one stable line.
func NewCmd() *cobra.Command {
	var short, asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short || !asJSON {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "shoggoth %s\n", buildinfo.Summary())
				return err
			}
			// JSON goes to stdout, the human line to stderr.
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "shoggoth version: %s\n", buildinfo.Summary())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(buildinfo.Collect())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version string")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detailed JSON version info")
	return cmd
}
