// Package archive merges objects and archives into one static library.
package archive

import (
	"context"

	"github.com/flarebyte/shoggoth/internal/logging"
	"github.com/flarebyte/shoggoth/internal/proc"
)

var log = logging.Log

// Mode is the llvm-ar operation: quick append, create silently, and splice
// the members of archive operands rather than nesting them.
const Mode = "qcL"

// Inputs lists what goes into the merged archive, in archiver order.
type Inputs struct {
	Objects          []string
	FlattenedObjects []string
	Archives         []string
}

// Merger runs the archiver.
type Merger struct {
	Runner proc.Runner
	// Ar is the archiver program; defaults to "llvm-ar".
	Ar string
}

// Merge writes out with a single archiver invocation.
func (m Merger) Merge(ctx context.Context, out string, in Inputs) error {
	ar := m.Ar
	if ar == "" {
		ar = "llvm-ar"
	}
	args := make([]string, 0, 2+len(in.Objects)+len(in.FlattenedObjects)+len(in.Archives))
	args = append(args, Mode, out)
	args = append(args, in.Objects...)
	args = append(args, in.FlattenedObjects...)
	args = append(args, in.Archives...)
	log.Notice("merging %d objects, %d flattened archives and %d archives into %s",
		len(in.Objects), len(in.FlattenedObjects), len(in.Archives), out)
	_, err := m.Runner.Run(ctx, ar, args...)
	return err
}
