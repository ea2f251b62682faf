package stage

import (
	"context"
	"fmt"
	"io"

	"github.com/flarebyte/shoggoth/internal/proc"
)

// Deps carries the side-effecting collaborators of the stages.
type Deps struct {
	// Runner starts ninja, ld and llvm-ar.
	Runner proc.Runner
	// ConfigOut receives the parsed build configuration as JSON when set.
	ConfigOut io.Writer
	// ScratchParent is where scratch directories are created; empty means os.TempDir.
	ScratchParent string
	// Around wraps every stage run by RunStages when set. It must call next once.
	Around func(name string, in Envelope, next func() (Envelope, error)) (Envelope, error)
}

// Runner executes a stage.
type Runner func(ctx context.Context, in Envelope, deps Deps) (Envelope, error)

var registry = map[string]Runner{}

// Register adds a stage runner.
func Register(name string, r Runner) {
	registry[name] = r
}

// Run executes a registered stage by name. Errors are prefixed with the
// stage name and keep their type for errors.As.
func Run(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error) {
	r, ok := registry[name]
	if !ok {
		return Envelope{}, ErrUnknown{name: name}
	}
	log.Debug("stage %s", name)
	out, err := r(ctx, in, deps)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", name, err)
	}
	if out.Meta == nil {
		out.Meta = &Meta{}
	}
	out.Meta.Stage = name
	return out, nil
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }
