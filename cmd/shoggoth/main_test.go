package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/testutil"
)

var binPath string

func TestMain(m *testing.M) {
	if runtime.GOOS == "windows" {
		os.Exit(0)
	}
	dir, err := os.MkdirTemp("", "shoggoth-e2e-bin")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	binPath = filepath.Join(dir, "shoggoth")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n%s", err, out)
		_ = os.RemoveAll(dir)
		os.Exit(1)
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type runResult struct {
	code   int
	stdout string
	stderr string
}

// workspace is a node tree plus shell stand-ins for the build tools.
type workspace struct {
	nodeRoot string
	tools    string
	tmp      string
	out      string
}

const ldScript = `#!/bin/sh
out=
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out=$2; fi
  shift
done
echo flattened > "$out"
`

const arScript = `#!/bin/sh
shift
out=$1
shift
printf '!<arch>\n' > "$out"
for f in "$@"; do echo "$f" >> "$out"; done
`

const failScript = `#!/bin/sh
echo "ld: cannot open output file" >&2
exit 1
`

func newWorkspace(t *testing.T, compdbJSON string) *workspace {
	t.Helper()
	root := t.TempDir()
	nodeRoot, buildRoot, err := testutil.NodeTree(root, "x64")
	require.NoError(t, err)
	if compdbJSON == "" {
		compdbJSON = testutil.Compdb(buildRoot, map[string]string{
			"node": "c++ -o node -Wl,--whole-archive obj/libnode.a -Wl,--no-whole-archive obj/node_main.o obj/libuv.a",
		})
	}
	w := &workspace{
		nodeRoot: nodeRoot,
		tools:    filepath.Join(root, "tools"),
		tmp:      filepath.Join(root, "tmp"),
		out:      filepath.Join(root, "dist", "libshoggoth.a"),
	}
	require.NoError(t, os.MkdirAll(w.tools, 0o755))
	require.NoError(t, os.MkdirAll(w.tmp, 0o755))
	w.script(t, "ninja", "#!/bin/sh\ncat <<'JSON'\n"+compdbJSON+"\nJSON\n")
	w.script(t, "ld", ldScript)
	w.script(t, "llvm-ar", arScript)
	w.script(t, "ld-fail", failScript)
	return w
}

func (w *workspace) script(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(w.tools, name), []byte(body), 0o755))
}

func (w *workspace) run(t *testing.T, args ...string) runResult {
	t.Helper()
	// subcommand first, then defaults, then overrides
	full := []string{}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		full = append(full, args[0])
		args = args[1:]
	}
	full = append(full,
		"--node-root", w.nodeRoot,
		"--platform", "linux",
		"--ninja", filepath.Join(w.tools, "ninja"),
		"--ld", filepath.Join(w.tools, "ld"),
		"--ar", filepath.Join(w.tools, "llvm-ar"),
		"--out", w.out,
	)
	cmd := exec.Command(binPath, append(full, args...)...)
	cmd.Env = append(os.Environ(), "TMPDIR="+w.tmp)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	if err != nil {
		ee, ok := err.(*exec.ExitError)
		require.True(t, ok, "run: %v", err)
		code = ee.ExitCode()
	}
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (w *workspace) assertNoScratch(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(w.tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMergeEndToEnd(t *testing.T) {
	w := newWorkspace(t, "")
	res := w.run(t, "--print-config=false")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, w.out+"\n", res.stdout)

	b, err := os.ReadFile(w.out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "!<arch>", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "/obj/node_main.o"))
	assert.True(t, strings.HasSuffix(lines[2], "/libnode.o"))
	assert.True(t, strings.HasSuffix(lines[3], "/obj/libuv.a"))
	w.assertNoScratch(t)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		compdb string
		args   []string
		prep   func(t *testing.T, w *workspace)
		code   int
		stderr string
	}{
		{
			name:   "linker failure",
			args:   []string{"--ld", "LD_FAIL"},
			code:   3,
			stderr: "ld: cannot open output file",
		},
		{
			name:   "ninja missing",
			args:   []string{"--ninja", "/nonexistent/ninja"},
			code:   3,
			stderr: "not found",
		},
		{
			name: "config.gypi missing",
			prep: func(t *testing.T, w *workspace) {
				require.NoError(t, os.Remove(filepath.Join(w.nodeRoot, "config.gypi")))
			},
			code:   2,
			stderr: "read-build-config: failed to read config",
		},
		{
			name:   "compdb not json",
			compdb: "ninja: error: loading 'build.ninja'",
			code:   4,
			stderr: "load-compdb:",
		},
		{
			name:   "target missing",
			args:   []string{"--target", "node_g"},
			code:   5,
			stderr: `no compile record output matches "node_g"`,
		},
		{
			name:   "unsupported platform",
			args:   []string{"--platform", "aix"},
			code:   6,
			stderr: "unsupported platform aix",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorkspace(t, tc.compdb)
			if tc.prep != nil {
				tc.prep(t, w)
			}
			args := append([]string{"merge"}, tc.args...)
			for i, a := range args {
				if a == "LD_FAIL" {
					args[i] = filepath.Join(w.tools, "ld-fail")
				}
			}
			res := w.run(t, args...)
			assert.Equal(t, tc.code, res.code, res.stderr)
			assert.Contains(t, res.stderr, tc.stderr)
			assert.Equal(t, 1, strings.Count(strings.TrimSpace(res.stderr), "\n")+1, "stderr must be one line: %q", res.stderr)
			assert.NoFileExists(t, w.out)
			w.assertNoScratch(t)
		})
	}
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, fault.ExitGeneric, exitCode(errors.New("unknown flag: --nope")))
	wrapped := fmt.Errorf("select-record: %w", &fault.NotFoundError{What: "compile record output", Name: "node"})
	assert.Equal(t, fault.ExitNotFound, exitCode(wrapped))
	assert.Equal(t, fault.ExitUnsupported, exitCode(&fault.UnsupportedPlatformError{Platform: "aix"}))
}

func TestVersionBinary(t *testing.T) {
	out, err := exec.Command(binPath, "version").Output()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "shoggoth dev"))
}
