// Package gypi reads the node build configuration (config.gypi), a Python
// literal dict with single quotes and # comment lines.
package gypi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/flarebyte/shoggoth/internal/fault"
)

// FileName is the configuration document inside the node root.
const FileName = "config.gypi"

// Arch is a node target_arch identifier.
type Arch string

const (
	ArchX64      Arch = "x64"
	ArchArm64    Arch = "arm64"
	ArchIA32     Arch = "ia32"
	ArchArm      Arch = "arm"
	ArchPPC64    Arch = "ppc64"
	ArchS390X    Arch = "s390x"
	ArchRiscv64  Arch = "riscv64"
	ArchLoong64  Arch = "loong64"
	ArchMips64el Arch = "mips64el"
)

var knownArches = map[Arch]bool{
	ArchX64: true, ArchArm64: true, ArchIA32: true, ArchArm: true, ArchPPC64: true,
	ArchS390X: true, ArchRiscv64: true, ArchLoong64: true, ArchMips64el: true,
}

// BuildConfig is the parsed configuration document.
type BuildConfig struct {
	Path       string         `json:"path"`
	TargetArch Arch           `json:"targetArch"`
	Raw        map[string]any `json:"raw"`
}

// Normalize turns config.gypi text into JSON-compatible text: comment lines
// are dropped and single quotes become double quotes.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(l, "#") {
			continue
		}
		kept = append(kept, strings.ReplaceAll(l, "'", `"`))
	}
	return strings.Join(kept, "\n")
}

// Read loads <root>/config.gypi.
func Read(root string) (BuildConfig, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return BuildConfig{}, &fault.ConfigReadError{Path: path, Err: err}
	}
	return Parse(path, string(data))
}

// Parse decodes config.gypi text. path is only used in error messages.
// A key repeated with a different value is a ConfigParseError rather than
// last-wins; configure never writes repeated keys.
func Parse(path, text string) (BuildConfig, error) {
	invalid := func(format string, args ...any) error {
		return &fault.ConfigParseError{Path: path, Msg: fmt.Sprintf(format, args...)}
	}
	ctx := cuecontext.New()
	v := ctx.CompileString(Normalize(text), cue.Filename(path))
	if err := v.Err(); err != nil {
		return BuildConfig{}, invalid("%v", err)
	}
	if v.Kind() != cue.StructKind {
		return BuildConfig{}, invalid("top level is not a mapping")
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return BuildConfig{}, invalid("%v", err)
	}
	cfg := BuildConfig{Path: path}
	if err := json.Unmarshal(b, &cfg.Raw); err != nil {
		return BuildConfig{}, invalid("%v", err)
	}

	av := v.LookupPath(cue.ParsePath("variables.target_arch"))
	if !av.Exists() {
		return BuildConfig{}, invalid("missing required field: variables.target_arch")
	}
	var arch string
	if av.Kind() != cue.StringKind {
		return BuildConfig{}, invalid("invalid type for field: variables.target_arch (expected string)")
	}
	if err := av.Decode(&arch); err != nil {
		return BuildConfig{}, invalid("invalid value for variables.target_arch: %v", err)
	}
	if !knownArches[Arch(arch)] {
		return BuildConfig{}, invalid("unknown target_arch: %q", arch)
	}
	cfg.TargetArch = Arch(arch)
	return cfg, nil
}
