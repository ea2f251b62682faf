package stage

import (
	"context"
	"encoding/json"
	"io"

	"github.com/flarebyte/shoggoth/internal/gypi"
)

const readBuildConfigStage = "read-build-config"

// PrintBuildConfig writes the parsed configuration as indented JSON.
func PrintBuildConfig(w io.Writer, cfg gypi.BuildConfig) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg.Raw)
}

func readBuildConfigRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	cfg, err := gypi.Read(s.NodeRoot)
	if err != nil {
		return Envelope{}, err
	}
	log.Info("target_arch %s from %s", cfg.TargetArch, cfg.Path)
	if deps.ConfigOut != nil {
		if err := PrintBuildConfig(deps.ConfigOut, cfg); err != nil {
			return Envelope{}, err
		}
	}
	out := in
	out.BuildConfig = &cfg
	return out, nil
}

func init() { Register(readBuildConfigStage, readBuildConfigRunner) }
