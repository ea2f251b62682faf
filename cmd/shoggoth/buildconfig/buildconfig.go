// Package buildconfig implements `shoggoth config`.
package buildconfig

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/cmd/shoggoth/options"
	"github.com/flarebyte/shoggoth/internal/gypi"
	"github.com/flarebyte/shoggoth/internal/stage"
)

// NewCmd returns `shoggoth config`.
func NewCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:           "config",
		Short:         "Print the parsed config.gypi of the node tree as JSON",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.Settings(cmd, nil)
			if err != nil {
				return err
			}
			cfg, err := gypi.Read(s.NodeRoot)
			if err != nil {
				return err
			}
			return stage.PrintBuildConfig(cmd.OutOrStdout(), cfg)
		},
	}
}
