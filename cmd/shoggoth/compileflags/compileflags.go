// Package compileflags implements `shoggoth compile-flags`, which prints the
// include directories and C++ options an embedder needs to compile against
// the merged archive.
package compileflags

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/cmd/shoggoth/options"
	"github.com/flarebyte/shoggoth/internal/cmdline"
	"github.com/flarebyte/shoggoth/internal/compdb"
	"github.com/flarebyte/shoggoth/internal/manifest"
)

type document struct {
	Record string `json:"record"`
	cmdline.CompileFlags
}

// NewCmd returns `shoggoth compile-flags`.
func NewCmd(o *options.Options) *cobra.Command {
	var (
		file   string
		output string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:           "compile-flags",
		Short:         "Print include dirs and C++ options of one compile record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (output == "") {
				return errors.New("exactly one of --file or --output is required")
			}
			s, err := o.Settings(cmd, nil)
			if err != nil {
				return err
			}
			records, err := compdb.Loader{Runner: options.NewRunner(s, o.Timeout), Ninja: s.Tools.Ninja}.Load(cmd.Context(), s.BuildRoot)
			if err != nil {
				return err
			}
			var rec compdb.Record
			if file != "" {
				rec, err = compdb.FindByFile(records, file)
			} else {
				rec, err = compdb.FindByOutput(records, output)
			}
			if err != nil {
				return err
			}
			doc := document{Record: rec.Output, CompileFlags: cmdline.ParseCompile(rec.Command, s.BuildRoot)}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			b, err := manifest.Marshal("compile-flags", doc)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Source file of the record (path as in the database, or base name)")
	cmd.Flags().StringVar(&output, "output", "", "Output base name of the record")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	return cmd
}
