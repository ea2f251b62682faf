// Package options holds the flags shared by every shoggoth command and turns
// them into pipeline settings.
package options

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/shoggoth/internal/config"
	"github.com/flarebyte/shoggoth/internal/logging"
	"github.com/flarebyte/shoggoth/internal/proc"
	"github.com/flarebyte/shoggoth/internal/stage"
)

// Options are the persistent flags of the root command.
type Options struct {
	ConfigPath string
	NodeRoot   string
	BuildRoot  string
	Target     string
	LibName    string
	Platform   string
	Ninja      string
	Ld         string
	Ar         string
	Exclude    []string
	Filter     string
	Timeout    time.Duration
	Verbose    int
}

// NewRunner builds the subprocess runner for a run. Tests replace it.
var NewRunner = func(s config.Settings, timeout time.Duration) proc.Runner {
	return proc.NewExec(proc.Options{MaxStdout: s.MaxCompdbBytes, Timeout: timeout})
}

// Bind registers the persistent flags on cmd.
func (o *Options) Bind(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "Path to settings file (.cue)")
	fs.StringVar(&o.NodeRoot, "node-root", "", "Directory holding config.gypi (default \"node\")")
	fs.StringVar(&o.BuildRoot, "build-root", "", "Ninja build directory (default <node-root>/out/Release)")
	fs.StringVar(&o.Target, "target", "", "Output name of the link record to merge (default \"node\")")
	fs.StringVar(&o.LibName, "lib-name", "", "Merged archive is lib<name>.a (default \"shoggoth\")")
	fs.StringVar(&o.Platform, "platform", "", "Linker family: linux or darwin (default host)")
	fs.StringVar(&o.Ninja, "ninja", "", "ninja program")
	fs.StringVar(&o.Ld, "ld", "", "ld program")
	fs.StringVar(&o.Ar, "ar", "", "llvm-ar program")
	fs.StringArrayVar(&o.Exclude, "exclude", nil, "Drop plan members matching a gitignore pattern (repeatable)")
	fs.StringVar(&o.Filter, "filter", "", "Lua expression keeping plan members (globals: path, rel, name, kind)")
	fs.DurationVar(&o.Timeout, "timeout", 0, "Bound each subprocess (0 disables)")
	fs.CountVarP(&o.Verbose, "verbose", "v", "Increase log verbosity (repeatable)")
}

// InitLogging configures the logger from -v.
func (o *Options) InitLogging(cmd *cobra.Command) {
	logging.Init(logging.Verbosity(o.Verbose), cmd.ErrOrStderr())
}

// Settings loads the settings file when given, applies flag overrides and
// resolves paths. edit runs before resolution for command specific fields.
func (o *Options) Settings(cmd *cobra.Command, edit func(*config.Settings)) (config.Settings, error) {
	s := config.Defaults()
	if o.ConfigPath != "" {
		var err error
		if s, err = config.Load(o.ConfigPath); err != nil {
			return config.Settings{}, err
		}
	}
	changed := cmd.Flags().Changed
	overrides := []struct {
		flag string
		val  string
		dst  *string
	}{
		{"node-root", o.NodeRoot, &s.NodeRoot},
		{"build-root", o.BuildRoot, &s.BuildRoot},
		{"target", o.Target, &s.Target},
		{"lib-name", o.LibName, &s.LibName},
		{"platform", o.Platform, &s.Platform},
		{"ninja", o.Ninja, &s.Tools.Ninja},
		{"ld", o.Ld, &s.Tools.Ld},
		{"ar", o.Ar, &s.Tools.Ar},
		{"filter", o.Filter, &s.Filter.Inline},
	}
	for _, ov := range overrides {
		if changed(ov.flag) {
			*ov.dst = ov.val
		}
	}
	s.Exclude = append(s.Exclude, o.Exclude...)
	if edit != nil {
		edit(&s)
	}
	return s.Resolve()
}

// Deps builds the stage collaborators for s.
func (o *Options) Deps(s config.Settings) stage.Deps {
	return stage.Deps{Runner: NewRunner(s, o.Timeout)}
}
