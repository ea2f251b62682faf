// Package merge implements `shoggoth merge`, the full pipeline.
package merge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/cmd/shoggoth/options"
	"github.com/flarebyte/shoggoth/internal/config"
	"github.com/flarebyte/shoggoth/internal/stage"
)

// Flags are the merge specific flags. The root command binds them too.
type Flags struct {
	Out         string
	Manifest    string
	JSON        bool
	PrintConfig bool
	Progress    bool
}

// Bind registers f on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.Out, "out", "o", "", "Where to write the merged archive (default ./lib<lib-name>.a)")
	fs.StringVar(&f.Manifest, "manifest", "", "Also write a YAML manifest of the merge")
	fs.BoolVar(&f.JSON, "json", false, "Print a JSON report instead of the archive path")
	fs.BoolVar(&f.PrintConfig, "print-config", true, "Print the parsed config.gypi as JSON first")
	fs.BoolVar(&f.Progress, "progress", false, "Report stage progress on stderr")
}

// NewCmd returns `shoggoth merge`.
func NewCmd(o *options.Options) *cobra.Command {
	f := &Flags{}
	cmd := &cobra.Command{
		Use:           "merge",
		Short:         "Merge the link inputs of the target into one static archive",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, o, f)
		},
	}
	f.Bind(cmd)
	return cmd
}

// Run executes the pipeline and prints the result to cmd's stdout.
func Run(cmd *cobra.Command, o *options.Options, f *Flags) error {
	s, err := o.Settings(cmd, func(s *config.Settings) {
		if f.Out != "" {
			s.Out = f.Out
		}
		if f.Manifest != "" {
			s.Manifest = f.Manifest
		}
	})
	if err != nil {
		return err
	}
	deps := o.Deps(s)
	stdout := cmd.OutOrStdout()
	// The config dump would make --json output two documents.
	if f.PrintConfig && (!f.JSON || cmd.Flags().Changed("print-config")) {
		deps.ConfigOut = stdout
	}
	if f.Progress {
		p := newProgressReporter(cmd.ErrOrStderr(), defaultProgressInterval)
		deps.Around = p.runStage
	}

	out, err := stage.Execute(cmd.Context(), stage.New(s), deps)
	if err != nil {
		return err
	}
	if !f.JSON {
		_, err = fmt.Fprintln(stdout, out.Report.Archive)
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out.Report); err != nil {
		return err
	}
	_, err = stdout.Write(buf.Bytes())
	return err
}
