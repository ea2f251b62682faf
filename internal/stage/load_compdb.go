package stage

import (
	"context"

	"github.com/flarebyte/shoggoth/internal/compdb"
)

const loadCompdbStage = "load-compdb"

func loadCompdbRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	records, err := compdb.Loader{Runner: deps.Runner, Ninja: s.Tools.Ninja}.Load(ctx, s.BuildRoot)
	if err != nil {
		return Envelope{}, err
	}
	out := in
	out.Records = records
	out.RecordCount = len(records)
	return out, nil
}

func init() { Register(loadCompdbStage, loadCompdbRunner) }
