package cmdline

import "strings"

// CompileFlags are the reusable parts of a compile command.
type CompileFlags struct {
	IncludeDirs []string `json:"includeDirs" yaml:"includeDirs"`
	CxxOptions  []string `json:"cxxOptions" yaml:"cxxOptions"`
}

var passthroughPrefixes = []string{"-D", "-f", "-std"}

// ParseCompile extracts -I include directories (resolved against buildRoot)
// and -D/-f/-std compiler options from a compile command, in order.
func ParseCompile(cmd, buildRoot string) CompileFlags {
	flags := CompileFlags{IncludeDirs: []string{}, CxxOptions: []string{}}
	for _, arg := range tokens(cmd) {
		if strings.HasPrefix(arg, "-I") {
			if dir := strings.TrimPrefix(arg, "-I"); dir != "" {
				flags.IncludeDirs = append(flags.IncludeDirs, absFrom(buildRoot, dir))
			}
			continue
		}
		for _, p := range passthroughPrefixes {
			if strings.HasPrefix(arg, p) {
				flags.CxxOptions = append(flags.CxxOptions, arg)
				break
			}
		}
	}
	return flags
}
