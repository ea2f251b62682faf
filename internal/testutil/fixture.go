// Package testutil builds throwaway node source trees and a scripted
// toolchain for pipeline tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/proc"
)

// GypiFor returns a minimal config.gypi for arch.
func GypiFor(arch string) string {
	return "# Do not edit. Generated by the configure script.\n" +
		"{ 'target_defaults': { 'cflags': [], 'default_configuration': 'Release'},\n" +
		"  'variables': { 'host_arch': 'x64', 'target_arch': '" + arch + "'}}\n"
}

// NodeTree writes <root>/node/config.gypi and creates node/out/Release.
func NodeTree(root, arch string) (nodeRoot, buildRoot string, err error) {
	nodeRoot = filepath.Join(root, "node")
	buildRoot = filepath.Join(nodeRoot, "out", "Release")
	if err := os.MkdirAll(buildRoot, 0o755); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(filepath.Join(nodeRoot, "config.gypi"), []byte(GypiFor(arch)), 0o644); err != nil {
		return "", "", err
	}
	return nodeRoot, buildRoot, nil
}

// Compdb renders records as ninja would print them.
func Compdb(buildRoot string, outputs map[string]string) string {
	type rec struct {
		Directory string `json:"directory"`
		Command   string `json:"command"`
		Output    string `json:"output"`
	}
	var recs []rec
	for _, out := range sortedKeys(outputs) {
		recs = append(recs, rec{Directory: buildRoot, Command: outputs[out], Output: out})
	}
	b, _ := json.Marshal(recs)
	return string(b)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Toolchain answers ninja, ld and llvm-ar calls. ld and llvm-ar write their
// -o / output operand so later steps see real files.
type Toolchain struct {
	// CompdbJSON is printed by `ninja -t compdb`.
	CompdbJSON string
	// Fail makes the named program exit 1.
	Fail string
}

// Handler plugs the toolchain into a proc.Fake.
func (tc Toolchain) Handler(program string, args []string) (proc.Result, error) {
	base := filepath.Base(program)
	if tc.Fail != "" && base == tc.Fail {
		return proc.Result{}, &fault.SubprocessError{Program: program, Args: args, Status: 1, Stderr: base + ": scripted failure"}
	}
	switch base {
	case "ninja":
		return proc.Result{Stdout: []byte(tc.CompdbJSON)}, nil
	case "ld":
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				return proc.Result{}, os.WriteFile(args[i+1], []byte("flattened "+strings.Join(args, " ")), 0o644)
			}
		}
		return proc.Result{}, &fault.SubprocessError{Program: program, Args: args, Status: 1, Stderr: "no output file"}
	case "llvm-ar", "ar":
		if len(args) < 2 {
			return proc.Result{}, &fault.SubprocessError{Program: program, Args: args, Status: 1, Stderr: "usage"}
		}
		body := "!<arch>\n" + strings.Join(args[2:], "\n") + "\n"
		return proc.Result{}, os.WriteFile(args[1], []byte(body), 0o644)
	default:
		return proc.Result{}, &fault.SubprocessError{Program: program, Args: args, NotFound: true}
	}
}
