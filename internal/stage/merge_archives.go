package stage

import (
	"context"
	"path/filepath"

	"github.com/flarebyte/shoggoth/internal/archive"
)

const mergeArchivesStage = "merge-archives"

func mergeArchivesRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	if in.ScratchDir == "" {
		return Envelope{}, errMissing("scratch dir")
	}
	if in.Plan == nil {
		return Envelope{}, errMissing("link plan")
	}
	dst := filepath.Join(in.ScratchDir, s.ArchiveName())
	err = archive.Merger{Runner: deps.Runner, Ar: s.Tools.Ar}.Merge(ctx, dst, archive.Inputs{
		Objects:          in.Plan.Objects,
		FlattenedObjects: in.Flattened,
		Archives:         in.Plan.Archives,
	})
	if err != nil {
		return Envelope{}, err
	}
	out := in
	out.Archive = dst
	return out, nil
}

func init() { Register(mergeArchivesStage, mergeArchivesRunner) }
