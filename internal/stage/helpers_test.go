package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flarebyte/shoggoth/internal/config"
	"github.com/flarebyte/shoggoth/internal/proc"
	"github.com/flarebyte/shoggoth/internal/testutil"
)

const linkCommand = "c++ -pthread -rdynamic -o node -Wl,--whole-archive obj/src/libnode.a obj/deps/v8/libv8_base.a -Wl,--no-whole-archive obj/src/node_main.o obj/deps/uv/libuv.a -ldl"

// fixture is a node tree with a scripted toolchain.
type fixture struct {
	settings config.Settings
	deps     Deps
	fake     *proc.Fake
	scratch  string
}

func newFixture(t *testing.T, platform, arch string, tc testutil.Toolchain) fixture {
	t.Helper()
	root := t.TempDir()
	nodeRoot, buildRoot, err := testutil.NodeTree(root, arch)
	require.NoError(t, err)
	if tc.CompdbJSON == "" {
		tc.CompdbJSON = testutil.Compdb(buildRoot, map[string]string{
			"obj/src/node_main.o": "c++ -Isrc -c ../../src/node_main.cc -o obj/src/node_main.o",
			"node":                linkCommand,
		})
	}
	s := config.Defaults()
	s.NodeRoot = nodeRoot
	s.Platform = platform
	s.Out = filepath.Join(root, "dist", "libshoggoth.a")
	s, err = s.Resolve()
	require.NoError(t, err)

	scratchParent := filepath.Join(root, "tmp")
	require.NoError(t, os.MkdirAll(scratchParent, 0o755))
	fake := &proc.Fake{Handler: tc.Handler}
	return fixture{
		settings: s,
		deps:     Deps{Runner: fake, ScratchParent: scratchParent},
		fake:     fake,
		scratch:  scratchParent,
	}
}

// assertScratchEmpty fails when a scratch directory outlived the run.
func (f fixture) assertScratchEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.scratch)
	require.NoError(t, err)
	require.Empty(t, entries, "scratch directories left behind")
}

func (f fixture) calls() []string {
	var out []string
	for _, c := range f.fake.Calls() {
		out = append(out, c.String())
	}
	return out
}
