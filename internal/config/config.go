package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/flarebyte/shoggoth/internal/fault"
)

// DefaultMaxCompdbBytes bounds the captured compile database output.
const DefaultMaxCompdbBytes = 64 * 1024 * 1024

// Settings is the explicit configuration value threaded through the pipeline.
type Settings struct {
	ConfigVersion string `json:"configVersion"`
	// NodeRoot holds config.gypi.
	NodeRoot string `json:"nodeRoot"`
	// BuildRoot is the ninja output directory; empty means <NodeRoot>/out/Release.
	BuildRoot string `json:"buildRoot"`
	// Target is the base name of the compile record whose link command is used.
	Target string `json:"target"`
	// LibName names the merged archive lib<LibName>.a.
	LibName string `json:"libName"`
	// Out is where the merged archive is persisted; empty means ./lib<LibName>.a.
	Out      string `json:"out,omitempty"`
	Manifest string `json:"manifest,omitempty"`
	Platform string `json:"platform"`
	Tools    Tools  `json:"tools"`

	MaxCompdbBytes int      `json:"maxCompdbBytes"`
	Exclude        []string `json:"exclude,omitempty"`
	Filter         Filter   `json:"filter"`
}

// Tools names the external programs.
type Tools struct {
	Ninja string `json:"ninja"`
	Ld    string `json:"ld"`
	Ar    string `json:"ar"`
}

// Filter holds an optional inline Lua predicate over plan members.
type Filter struct {
	Inline string `json:"inline,omitempty"`
}

// Defaults returns the settings used when no file or flag says otherwise.
func Defaults() Settings {
	return Settings{
		ConfigVersion:  CurrentConfigVersion,
		NodeRoot:       "node",
		Target:         "node",
		LibName:        "shoggoth",
		Platform:       runtime.GOOS,
		Tools:          Tools{Ninja: "ninja", Ld: "ld", Ar: "llvm-ar"},
		MaxCompdbBytes: DefaultMaxCompdbBytes,
	}
}

// ArchiveName is the file name of the merged archive.
func (s Settings) ArchiveName() string {
	return "lib" + s.LibName + ".a"
}

// Resolve fills derived fields and makes every path absolute.
func (s Settings) Resolve() (Settings, error) {
	if s.LibName == "" {
		return Settings{}, errors.New("libName must not be empty")
	}
	if s.Target == "" {
		return Settings{}, errors.New("target must not be empty")
	}
	var err error
	if s.NodeRoot, err = filepath.Abs(s.NodeRoot); err != nil {
		return Settings{}, err
	}
	if s.BuildRoot == "" {
		s.BuildRoot = filepath.Join(s.NodeRoot, "out", "Release")
	}
	if s.BuildRoot, err = filepath.Abs(s.BuildRoot); err != nil {
		return Settings{}, err
	}
	if s.Out == "" {
		s.Out = s.ArchiveName()
	}
	if s.Out, err = filepath.Abs(s.Out); err != nil {
		return Settings{}, err
	}
	if s.Manifest != "" {
		if s.Manifest, err = filepath.Abs(s.Manifest); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, &fault.ConfigParseError{Path: path, Msg: "unsupported config format: expected .cue"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, &fault.ConfigReadError{Path: path, Err: err}
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, &fault.ConfigParseError{Path: path, Msg: err.Error()}
	}
	return v, nil
}

// Load reads a settings file and overlays it onto Defaults.
// Required field: configVersion (string, supported).
func Load(path string) (Settings, error) {
	s := Defaults()
	v, err := compileCUE(path)
	if err != nil {
		return Settings{}, err
	}
	invalid := func(format string, args ...any) error {
		return &fault.ConfigParseError{Path: path, Msg: fmt.Sprintf(format, args...)}
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Settings{}, invalid("%v", err)
	}
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&s.ConfigVersion); err != nil {
		return Settings{}, invalid("invalid value for configVersion: %v", err)
	}
	if !IsSupportedConfigVersion(s.ConfigVersion) {
		return Settings{}, invalid("unsupported configVersion: %q (supported: %s)", s.ConfigVersion, SupportedConfigVersionsCSV())
	}

	strFields := []struct {
		name string
		dst  *string
	}{
		{"nodeRoot", &s.NodeRoot},
		{"buildRoot", &s.BuildRoot},
		{"target", &s.Target},
		{"libName", &s.LibName},
		{"out", &s.Out},
		{"manifest", &s.Manifest},
		{"platform", &s.Platform},
		{"tools.ninja", &s.Tools.Ninja},
		{"tools.ld", &s.Tools.Ld},
		{"tools.ar", &s.Tools.Ar},
		{"filter.inline", &s.Filter.Inline},
	}
	for _, f := range strFields {
		if err := optionalString(v, f.name, f.dst); err != nil {
			return Settings{}, invalid("%v", err)
		}
	}

	mv := v.LookupPath(cue.ParsePath("maxCompdbBytes"))
	if mv.Exists() {
		if mv.Kind() != cue.IntKind {
			return Settings{}, invalid("invalid type for field: maxCompdbBytes (expected int)")
		}
		if err := mv.Decode(&s.MaxCompdbBytes); err != nil {
			return Settings{}, invalid("invalid value for maxCompdbBytes: %v", err)
		}
	}
	ev := v.LookupPath(cue.ParsePath("exclude"))
	if ev.Exists() {
		if ev.Kind() != cue.ListKind {
			return Settings{}, invalid("invalid type for field: exclude (expected list)")
		}
		if err := ev.Decode(&s.Exclude); err != nil {
			return Settings{}, invalid("invalid value for exclude: %v", err)
		}
	}
	return s, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

func optionalString(v cue.Value, name string, dst *string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return f.Decode(dst)
}
