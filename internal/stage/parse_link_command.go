package stage

import (
	"context"

	"github.com/flarebyte/shoggoth/internal/cmdline"
)

const parseLinkCommandStage = "parse-link-command"

func parseLinkCommandRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	if in.Record == nil {
		return Envelope{}, errMissing("selected record")
	}
	plan := cmdline.ParseLink(in.Record.Command, s.BuildRoot)
	log.Info("link plan: %d whole archives, %d archives, %d objects",
		len(plan.WholeArchives), len(plan.Archives), len(plan.Objects))
	out := in
	out.Plan = &plan
	return out, nil
}

func init() { Register(parseLinkCommandStage, parseLinkCommandRunner) }
