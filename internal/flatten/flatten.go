// Package flatten turns whole-archive members into single relocatable
// objects so the final archiver cannot drop any of their members.
package flatten

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/gypi"
	"github.com/flarebyte/shoggoth/internal/logging"
	"github.com/flarebyte/shoggoth/internal/proc"
)

var log = logging.Log

// Platform identifies the host linker family, using GOOS names.
type Platform string

const (
	Linux  Platform = "linux"
	Darwin Platform = "darwin"
)

// Strategy flattens one archive into one object file.
type Strategy interface {
	Flatten(ctx context.Context, archive, object string) error
}

// ldWholeArchive uses GNU/LLVM ld: ld -r --whole-archive <ar> --no-whole-archive -o <obj>.
type ldWholeArchive struct {
	runner proc.Runner
	ld     string
}

func (s ldWholeArchive) Flatten(ctx context.Context, archive, object string) error {
	_, err := s.runner.Run(ctx, s.ld, "-r", "--whole-archive", archive, "--no-whole-archive", "-o", object)
	return err
}

// ldForceLoad uses the Apple linker: ld -r -arch <arch> -force_load <ar> -o <obj>.
type ldForceLoad struct {
	runner proc.Runner
	ld     string
	arch   string
}

func (s ldForceLoad) Flatten(ctx context.Context, archive, object string) error {
	_, err := s.runner.Run(ctx, s.ld, "-r", "-arch", s.arch, "-force_load", archive, "-o", object)
	return err
}

// unsupported fails without running anything.
type unsupported struct {
	err error
}

func (s unsupported) Flatten(context.Context, string, string) error {
	return s.err
}

// darwinArch maps node target_arch values onto ld -arch names.
var darwinArch = map[gypi.Arch]string{
	gypi.ArchX64:   "x86_64",
	gypi.ArchArm64: "arm64",
}

// ForPlatform picks the strategy for a platform. It never fails; an
// unsupported platform or architecture yields a strategy whose Flatten
// returns *fault.UnsupportedPlatformError.
func ForPlatform(p Platform, arch gypi.Arch, runner proc.Runner, ld string) Strategy {
	if ld == "" {
		ld = "ld"
	}
	switch p {
	case Linux:
		return ldWholeArchive{runner: runner, ld: ld}
	case Darwin:
		a, ok := darwinArch[arch]
		if !ok {
			return unsupported{err: &fault.UnsupportedPlatformError{Platform: string(p), Arch: string(arch)}}
		}
		return ldForceLoad{runner: runner, ld: ld, arch: a}
	default:
		return unsupported{err: &fault.UnsupportedPlatformError{Platform: string(p)}}
	}
}

// ObjectNames returns the flattened object path for each archive, in order.
// Archives sharing a base name get -1, -2, ... suffixes, skipping any name
// already produced so no two archives share an object.
func ObjectNames(dir string, archives []string) []string {
	taken := map[string]bool{}
	next := map[string]int{}
	out := make([]string, 0, len(archives))
	for _, ar := range archives {
		stem := strings.TrimSuffix(filepath.Base(ar), ".a")
		name := stem
		for taken[name] {
			next[stem]++
			name = fmt.Sprintf("%s-%d", stem, next[stem])
		}
		taken[name] = true
		out = append(out, filepath.Join(dir, name+".o"))
	}
	return out
}

// All flattens every archive into dir, stopping at the first failure.
// It returns the object paths in archive order. An unsupported strategy fails
// even when there is nothing to flatten.
func All(ctx context.Context, s Strategy, dir string, archives []string) ([]string, error) {
	if u, ok := s.(unsupported); ok {
		return nil, u.err
	}
	objects := ObjectNames(dir, archives)
	for i, ar := range archives {
		log.Info("flattening %s", ar)
		if err := s.Flatten(ctx, ar, objects[i]); err != nil {
			return nil, fmt.Errorf("flatten %s: %w", filepath.Base(ar), err)
		}
	}
	return objects, nil
}
