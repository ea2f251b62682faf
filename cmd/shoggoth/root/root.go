package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/cmd/shoggoth/buildconfig"
	"github.com/flarebyte/shoggoth/cmd/shoggoth/compileflags"
	"github.com/flarebyte/shoggoth/cmd/shoggoth/diagnose"
	"github.com/flarebyte/shoggoth/cmd/shoggoth/merge"
	"github.com/flarebyte/shoggoth/cmd/shoggoth/options"
	"github.com/flarebyte/shoggoth/cmd/shoggoth/plan"
	"github.com/flarebyte/shoggoth/cmd/shoggoth/version"
)

// NewRootCmd creates the root command for shoggoth. Without a subcommand it
// behaves like `shoggoth merge`.
func NewRootCmd() *cobra.Command {
	o := &options.Options{}
	f := &merge.Flags{}
	cmd := &cobra.Command{
		Use:   "shoggoth",
		Short: "Merge the static link inputs of a node build into one archive",
		Args:  cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.InitLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return merge.Run(cmd, o, f)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	o.Bind(cmd)
	f.Bind(cmd)

	cmd.AddCommand(merge.NewCmd(o))
	cmd.AddCommand(plan.NewCmd(o))
	cmd.AddCommand(compileflags.NewCmd(o))
	cmd.AddCommand(buildconfig.NewCmd(o))
	cmd.AddCommand(diagnose.NewCmd(o))
	cmd.AddCommand(version.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
