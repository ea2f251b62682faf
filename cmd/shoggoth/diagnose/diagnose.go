// Package diagnose implements `shoggoth diagnose`, which runs a prefix of the
// pipeline and prints the resulting envelope.
package diagnose

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/cmd/shoggoth/options"
	"github.com/flarebyte/shoggoth/internal/stage"
)

// NewCmd returns `shoggoth diagnose`.
func NewCmd(o *options.Options) *cobra.Command {
	var (
		untilStage string
		dumpDir    string
		listStages bool
	)
	cmd := &cobra.Command{
		Use:           "diagnose",
		Short:         "Run the pipeline through one stage and print the envelope",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listStages {
				for _, name := range stage.All() {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			}
			stages, err := stage.Through(untilStage)
			if err != nil {
				return fmt.Errorf("invalid --until-stage: %w", err)
			}
			s, err := o.Settings(cmd, nil)
			if err != nil {
				return err
			}
			deps := o.Deps(s)
			if dumpDir != "" {
				deps.Around = dumper{dir: dumpDir}.around()
			}
			out, err := stage.ExecuteStages(cmd.Context(), stage.New(s), stages, deps)
			if err != nil {
				return err
			}
			return printEnvelopeOneLine(cmd.OutOrStdout(), out)
		},
	}
	last := stage.AnalysisStages[len(stage.AnalysisStages)-1]
	cmd.Flags().StringVar(&untilStage, "until-stage", last, "Run the pipeline through this stage (inclusive)")
	cmd.Flags().StringVar(&dumpDir, "dump-dir", "", "Directory to write per-stage dumps (<seq>_<stage>_{in,out}.json)")
	cmd.Flags().BoolVar(&listStages, "list", false, "List stage names in pipeline order")
	return cmd
}

// dumper writes the envelope before and after every stage.
type dumper struct {
	dir string
}

func (d dumper) around() func(string, stage.Envelope, func() (stage.Envelope, error)) (stage.Envelope, error) {
	seq := 0
	return func(name string, in stage.Envelope, next func() (stage.Envelope, error)) (stage.Envelope, error) {
		seq++
		if err := d.dump(seq, name, "in", in); err != nil {
			return stage.Envelope{}, err
		}
		out, err := next()
		if err != nil {
			return stage.Envelope{}, err
		}
		if err := d.dump(seq, name, "out", out); err != nil {
			return stage.Envelope{}, err
		}
		return out, nil
	}
}

func (d dumper) dump(seq int, stageName, suffix string, env stage.Envelope) error {
	base := fmt.Sprintf("%03d_%s_%s.json", seq, stageName, suffix)
	return writeJSONFile(filepath.Join(d.dir, base), env)
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dump dir: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func printEnvelopeOneLine(w io.Writer, env stage.Envelope) error {
	if env.Meta == nil {
		env.Meta = &stage.Meta{}
	}
	env.Meta.ContractVersion = "1"
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
