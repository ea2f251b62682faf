// Package plan implements `shoggoth plan`.
package plan

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/cmd/shoggoth/options"
	"github.com/flarebyte/shoggoth/internal/cmdline"
	"github.com/flarebyte/shoggoth/internal/filter"
	"github.com/flarebyte/shoggoth/internal/manifest"
	"github.com/flarebyte/shoggoth/internal/stage"
)

// document is what plan prints.
type document struct {
	Record  string            `json:"record"`
	Plan    *cmdline.LinkPlan `json:"plan"`
	Dropped []filter.Dropped  `json:"dropped,omitempty"`
}

// NewCmd returns `shoggoth plan`.
func NewCmd(o *options.Options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Print what merge would put in the archive, without building",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.Settings(cmd, nil)
			if err != nil {
				return err
			}
			out, err := stage.RunStages(cmd.Context(), stage.New(s), stage.AnalysisStages, o.Deps(s))
			if err != nil {
				return err
			}
			doc := document{Record: out.Record.Output, Plan: out.Plan, Dropped: out.Dropped}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			b, err := manifest.Marshal("plan", doc)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	return cmd
}
