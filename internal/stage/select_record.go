package stage

import (
	"context"

	"github.com/flarebyte/shoggoth/internal/compdb"
)

const selectRecordStage = "select-record"

func selectRecordRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	if in.Records == nil {
		return Envelope{}, errMissing("compile records")
	}
	rec, err := compdb.FindByOutput(in.Records, s.Target)
	if err != nil {
		return Envelope{}, err
	}
	out := in
	out.Record = &rec
	return out, nil
}

func init() { Register(selectRecordStage, selectRecordRunner) }
