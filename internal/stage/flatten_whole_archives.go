package stage

import (
	"context"

	"github.com/flarebyte/shoggoth/internal/flatten"
)

const flattenWholeArchivesStage = "flatten-whole-archives"

func flattenWholeArchivesRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	switch {
	case in.ScratchDir == "":
		return Envelope{}, errMissing("scratch dir")
	case in.BuildConfig == nil:
		return Envelope{}, errMissing("build config")
	case in.Plan == nil:
		return Envelope{}, errMissing("link plan")
	}
	strategy := flatten.ForPlatform(flatten.Platform(s.Platform), in.BuildConfig.TargetArch, deps.Runner, s.Tools.Ld)
	objs, err := flatten.All(ctx, strategy, in.ScratchDir, in.Plan.WholeArchives)
	if err != nil {
		return Envelope{}, err
	}
	out := in
	out.Flattened = objs
	return out, nil
}

func init() { Register(flattenWholeArchivesStage, flattenWholeArchivesRunner) }
