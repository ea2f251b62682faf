// Package buildinfo exposes version metadata for the CLI. Values can be
// overridden at build time via -ldflags; the cli package stamps are used
// when these are empty.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/flarebyte/shoggoth/cli"
)

var (
	// Version is the semantic version or custom string. Defaults to cli.Version or "dev".
	Version = "dev"
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time. Falls back to cli.Date.
	Date = ""
	// BuiltBy is an optional builder identifier.
	BuiltBy = ""
)

// Info is the detailed form printed by `version --json`.
type Info struct {
	Version   string            `json:"version"`
	Commit    string            `json:"commit"`
	Date      string            `json:"date"`
	BuiltBy   string            `json:"built_by"`
	Go        string            `json:"go"`
	GoOS      string            `json:"go_os"`
	GoArch    string            `json:"go_arch"`
	Deps      map[string]string `json:"deps,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func version() string {
	v := Version
	if v == "" {
		v = cli.Version
	}
	if v == "" {
		v = "dev"
	}
	return v
}

func date() string {
	if Date != "" {
		return Date
	}
	return cli.Date
}

// Collect returns the build metadata along with the module versions the
// binary was linked with.
func Collect() Info {
	info := Info{
		Version:   version(),
		Commit:    Commit,
		Date:      date(),
		BuiltBy:   BuiltBy,
		Go:        runtime.Version(),
		GoOS:      runtime.GOOS,
		GoArch:    runtime.GOARCH,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Deps) > 0 {
		info.Deps = make(map[string]string, len(bi.Deps))
		for _, d := range bi.Deps {
			info.Deps[d.Path] = d.Version
		}
	}
	return info
}

// Summary returns a concise single-line version string.
func Summary() string {
	v := version()
	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d := date(); d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
