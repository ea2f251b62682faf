// Package cmdline classifies the arguments of compile and link commands
// taken from a compile database.
//
// Commands are split on single spaces without any shell quoting. Ninja emits
// the paths this package cares about without embedded spaces, and shell-aware
// splitting could change which set a token lands in.
package cmdline

import (
	"path/filepath"
	"strings"
)

const (
	wholeArchiveOn     = "-Wl,--whole-archive"
	wholeArchiveOff    = "-Wl,--no-whole-archive"
	wholeArchivePrefix = "-Wl,--whole-archive,"
	forceLoadPrefix    = "-Wl,-force_load,"
)

// LinkPlan is the classification of a link command. The three lists are
// pairwise disjoint and hold absolute paths in first-seen order.
type LinkPlan struct {
	WholeArchives []string `json:"wholeArchives" yaml:"wholeArchives"`
	Archives      []string `json:"archives" yaml:"archives"`
	Objects       []string `json:"objects" yaml:"objects"`
}

// Len is the total number of members.
func (p LinkPlan) Len() int {
	return len(p.WholeArchives) + len(p.Archives) + len(p.Objects)
}

// orderedSet keeps insertion order and ignores duplicates.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = map[string]struct{}{}
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) has(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// tokens splits cmd on single spaces, dropping empty tokens.
func tokens(cmd string) []string {
	parts := strings.Split(cmd, " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseLink classifies a link command. Relative paths are resolved against
// buildRoot. A path named in a whole-archive context anywhere in the command
// is only reported as a whole archive.
func ParseLink(cmd, buildRoot string) LinkPlan {
	var whole, ars, objs orderedSet
	wholeArchive := false
	for _, arg := range tokens(cmd) {
		switch {
		case arg == wholeArchiveOn:
			wholeArchive = true
		case arg == wholeArchiveOff:
			wholeArchive = false
		case strings.HasPrefix(arg, wholeArchivePrefix):
			wholeArchive = true
			whole.add(absFrom(buildRoot, strings.TrimPrefix(arg, wholeArchivePrefix)))
		case strings.HasPrefix(arg, forceLoadPrefix):
			whole.add(absFrom(buildRoot, strings.TrimPrefix(arg, forceLoadPrefix)))
		case strings.HasSuffix(arg, ".a"):
			if wholeArchive {
				whole.add(absFrom(buildRoot, arg))
			} else {
				ars.add(absFrom(buildRoot, arg))
			}
		case strings.HasSuffix(arg, ".o"):
			objs.add(absFrom(buildRoot, arg))
		}
	}

	plan := LinkPlan{WholeArchives: whole.items}
	for _, p := range ars.items {
		if !whole.has(p) {
			plan.Archives = append(plan.Archives, p)
		}
	}
	for _, p := range objs.items {
		if !whole.has(p) {
			plan.Objects = append(plan.Objects, p)
		}
	}
	return plan
}

func absFrom(root, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
