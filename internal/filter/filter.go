// Package filter drops link plan members the caller does not want merged.
package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flarebyte/shoggoth/internal/cmdline"
	"github.com/flarebyte/shoggoth/internal/logging"
)

var log = logging.Log

// Kind tells which plan list a member came from.
type Kind string

const (
	KindWholeArchive Kind = "whole_archive"
	KindArchive      Kind = "archive"
	KindObject       Kind = "object"
)

// Member is one plan entry as seen by the selection rules.
type Member struct {
	Path string
	// Rel is Path relative to the build root, slash separated, or Path itself
	// when it lies outside the build root.
	Rel  string
	Kind Kind
}

// Rules select plan members. The zero value keeps everything.
type Rules struct {
	BuildRoot string
	// Exclude holds gitignore-syntax patterns matched against Member.Rel.
	Exclude []string
	// Inline is a Lua expression or chunk returning true to keep a member.
	Inline string
}

// Dropped records why a member was removed.
type Dropped struct {
	Path   string `json:"path" yaml:"path"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
}

// Empty reports whether the rules keep every member.
func (r Rules) Empty() bool {
	return len(r.Exclude) == 0 && strings.TrimSpace(r.Inline) == ""
}

// Apply returns the plan with excluded members removed, preserving order.
func Apply(plan cmdline.LinkPlan, r Rules) (cmdline.LinkPlan, []Dropped, error) {
	if r.Empty() {
		return plan, nil, nil
	}
	ex := newExcluder(r.Exclude)
	var pred *predicate
	if strings.TrimSpace(r.Inline) != "" {
		var err error
		if pred, err = compilePredicate(r.Inline); err != nil {
			return cmdline.LinkPlan{}, nil, err
		}
	}

	var dropped []Dropped
	keep := func(paths []string, kind Kind) ([]string, error) {
		var out []string
		for _, p := range paths {
			m := Member{Path: p, Rel: relTo(r.BuildRoot, p), Kind: kind}
			if ex.match(m.Rel) {
				dropped = append(dropped, Dropped{Path: p, Kind: kind, Reason: "exclude"})
				log.Info("excluding %s (pattern)", m.Rel)
				continue
			}
			if pred != nil {
				ok, err := pred.eval(m)
				if err != nil {
					return nil, fmt.Errorf("filter %s: %w", m.Rel, err)
				}
				if !ok {
					dropped = append(dropped, Dropped{Path: p, Kind: kind, Reason: "filter"})
					log.Info("excluding %s (filter)", m.Rel)
					continue
				}
			}
			out = append(out, p)
		}
		return out, nil
	}

	var out cmdline.LinkPlan
	var err error
	if out.WholeArchives, err = keep(plan.WholeArchives, KindWholeArchive); err != nil {
		return cmdline.LinkPlan{}, nil, err
	}
	if out.Archives, err = keep(plan.Archives, KindArchive); err != nil {
		return cmdline.LinkPlan{}, nil, err
	}
	if out.Objects, err = keep(plan.Objects, KindObject); err != nil {
		return cmdline.LinkPlan{}, nil, err
	}
	return out, dropped, nil
}

func relTo(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
