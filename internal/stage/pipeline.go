package stage

import (
	"context"
	"fmt"

	"github.com/flarebyte/shoggoth/internal/scratch"
)

// AnalysisStages read the build and decide what to merge. They have no
// side effects beyond reading files and running ninja.
var AnalysisStages = []string{
	readBuildConfigStage,
	loadCompdbStage,
	selectRecordStage,
	parseLinkCommandStage,
	selectMembersStage,
}

// BuildStages produce the archive and need a scratch directory.
var BuildStages = []string{
	flattenWholeArchivesStage,
	mergeArchivesStage,
	persistOutputStage,
}

// All returns every stage in pipeline order.
func All() []string {
	out := make([]string, 0, len(AnalysisStages)+len(BuildStages))
	out = append(out, AnalysisStages...)
	return append(out, BuildStages...)
}

// Through returns the pipeline prefix ending at the named stage.
func Through(name string) ([]string, error) {
	all := All()
	for i, s := range all {
		if s == name {
			return all[:i+1], nil
		}
	}
	return nil, ErrUnknown{name: name}
}

func isBuildStage(name string) bool {
	for _, s := range BuildStages {
		if s == name {
			return true
		}
	}
	return false
}

// RunStages executes the named stages in order, stopping at the first error.
func RunStages(ctx context.Context, in Envelope, stages []string, deps Deps) (Envelope, error) {
	out := in
	var err error
	for _, name := range stages {
		cur := out
		next := func() (Envelope, error) { return Run(ctx, name, cur, deps) }
		if deps.Around != nil {
			out, err = deps.Around(name, cur, next)
		} else {
			out, err = next()
		}
		if err != nil {
			return Envelope{}, err
		}
	}
	return out, nil
}

// ExecuteStages runs stages in order. Build stages run inside a scratch
// directory that is removed whether or not they succeed; they must come
// after every analysis stage in the list.
func ExecuteStages(ctx context.Context, in Envelope, stages []string, deps Deps) (Envelope, error) {
	split := len(stages)
	for i, name := range stages {
		if isBuildStage(name) {
			split = i
			break
		}
	}
	for _, name := range stages[split:] {
		if !isBuildStage(name) {
			return Envelope{}, fmt.Errorf("stage %s cannot run after %s", name, stages[split])
		}
	}

	out, err := RunStages(ctx, in, stages[:split], deps)
	if err != nil {
		return Envelope{}, err
	}
	if split == len(stages) {
		return out, nil
	}
	err = scratch.With(deps.ScratchParent, func(d *scratch.Dir) error {
		cur := out
		cur.ScratchDir = d.Path
		built, err := RunStages(ctx, cur, stages[split:], deps)
		if err != nil {
			return err
		}
		out = built
		return nil
	})
	if err != nil {
		return Envelope{}, err
	}
	return out, nil
}

// Execute runs the whole pipeline.
func Execute(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	return ExecuteStages(ctx, in, All(), deps)
}
