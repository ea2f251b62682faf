package stage

import (
	"context"

	"github.com/flarebyte/shoggoth/internal/filter"
)

const selectMembersStage = "select-members"

func selectMembersRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	if in.Plan == nil {
		return Envelope{}, errMissing("link plan")
	}
	plan, dropped, err := filter.Apply(*in.Plan, filter.Rules{
		BuildRoot: s.BuildRoot,
		Exclude:   s.Exclude,
		Inline:    s.Filter.Inline,
	})
	if err != nil {
		return Envelope{}, err
	}
	if len(dropped) > 0 {
		log.Notice("selection dropped %d of %d members", len(dropped), in.Plan.Len())
	}
	out := in
	out.Plan = &plan
	out.Dropped = dropped
	return out, nil
}

func init() { Register(selectMembersStage, selectMembersRunner) }
