package filter

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

type excluder struct {
	m gitignore.Matcher
}

// newExcluder compiles gitignore-syntax lines. Blank lines and # comments
// are skipped, as in a .gitignore file.
func newExcluder(lines []string) excluder {
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return excluder{}
	}
	return excluder{m: gitignore.NewMatcher(patterns)}
}

func (e excluder) match(rel string) bool {
	if e.m == nil {
		return false
	}
	comps := strings.Split(strings.TrimPrefix(rel, "/"), "/")
	return e.m.Match(comps, false)
}
