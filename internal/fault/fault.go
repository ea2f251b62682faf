// Package fault holds the error kinds surfaced by shoggoth. Each kind maps to
// a distinct process exit code through ExitCode.
package fault

import (
	"fmt"
	"strings"
)

const (
	ExitGeneric     = 1
	ExitConfig      = 2
	ExitSubprocess  = 3
	ExitDataParse   = 4
	ExitNotFound    = 5
	ExitUnsupported = 6
)

// ConfigReadError means a configuration file was missing or unreadable.
type ConfigReadError struct {
	Path string
	Err  error
}

func (e *ConfigReadError) Error() string {
	return fmt.Sprintf("failed to read config %s: %v", e.Path, e.Err)
}
func (e *ConfigReadError) Unwrap() error { return e.Err }
func (e *ConfigReadError) ExitCode() int { return ExitConfig }

// ConfigParseError means a configuration file was read but is not valid.
type ConfigParseError struct {
	Path string
	Msg  string
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Path, e.Msg)
}
func (e *ConfigParseError) ExitCode() int { return ExitConfig }

// SubprocessError means an external program could not be started, exited
// non-zero, overflowed its output limit or timed out.
type SubprocessError struct {
	Program  string
	Args     []string
	Status   int
	NotFound bool
	TimedOut bool
	Stderr   string
	Msg      string
}

func (e *SubprocessError) Error() string {
	var b strings.Builder
	b.WriteString("program ")
	b.WriteString(e.Program)
	switch {
	case e.NotFound:
		b.WriteString(" not found")
	case e.TimedOut:
		b.WriteString(" timed out")
	case e.Msg != "":
		b.WriteString(" ")
		b.WriteString(e.Msg)
	default:
		fmt.Fprintf(&b, " exited with status %d", e.Status)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}
func (e *SubprocessError) ExitCode() int { return ExitSubprocess }

// DataParseError means a program produced output that could not be decoded.
type DataParseError struct {
	Source string
	Err    error
}

func (e *DataParseError) Error() string {
	return fmt.Sprintf("invalid data from %s: %v", e.Source, e.Err)
}
func (e *DataParseError) Unwrap() error { return e.Err }
func (e *DataParseError) ExitCode() int { return ExitDataParse }

// NotFoundError means no compile record matched the requested name.
type NotFoundError struct {
	What string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s matches %q", e.What, e.Name)
}
func (e *NotFoundError) ExitCode() int { return ExitNotFound }

// UnsupportedPlatformError means the flattening step has no strategy for the
// platform (or architecture) in use.
type UnsupportedPlatformError struct {
	Platform string
	Arch     string
}

func (e *UnsupportedPlatformError) Error() string {
	if e.Arch != "" {
		return fmt.Sprintf("unsupported architecture %s on %s", e.Arch, e.Platform)
	}
	return "unsupported platform " + e.Platform
}
func (e *UnsupportedPlatformError) ExitCode() int { return ExitUnsupported }
