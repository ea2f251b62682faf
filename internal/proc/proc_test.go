package proc

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/shoggoth/internal/fault"
)

func requirePOSIXShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec tests require POSIX shell")
	}
}

func TestExecCapturesStdout(t *testing.T) {
	requirePOSIXShell(t)
	res, err := NewExec(Options{}).Run(context.Background(), "sh", "-c", "printf 'ok'")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Stdout))
	assert.Empty(t, res.Stderr)
}

func TestExecNonZeroExit(t *testing.T) {
	requirePOSIXShell(t)
	_, err := NewExec(Options{}).Run(context.Background(), "sh", "-c", "printf 'bad' >&2; exit 7")
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 7, se.Status)
	assert.Equal(t, "bad", se.Stderr)
	assert.Equal(t, "program sh exited with status 7: bad", se.Error())
}

func TestExecProgramNotFound(t *testing.T) {
	_, err := NewExec(Options{}).Run(context.Background(), "this-program-does-not-exist-xyz")
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.NotFound)
	assert.Equal(t, fault.ExitSubprocess, se.ExitCode())
}

func TestExecAbsolutePathNotFound(t *testing.T) {
	_, err := NewExec(Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "ninja"))
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.NotFound)
}

func TestExecStdoutLimit(t *testing.T) {
	requirePOSIXShell(t)
	res, err := NewExec(Options{MaxStdout: 5}).Run(context.Background(), "sh", "-c", "printf '0123456789'")
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "stdout exceeded limit", se.Msg)
	assert.Equal(t, "01234", string(res.Stdout))
}

func TestExecTimeout(t *testing.T) {
	requirePOSIXShell(t)
	r := NewExec(Options{Timeout: 20 * time.Millisecond, TermGrace: 10 * time.Millisecond})
	_, err := r.Run(context.Background(), "sh", "-c", "sleep 2")
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.TimedOut)
}

func TestExecCancelStopsChildren(t *testing.T) {
	requirePOSIXShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)
	r := NewExec(Options{TermGrace: 500 * time.Millisecond})
	start := time.Now()
	// the trailing command keeps sh from exec'ing sleep, so sleep is a grandchild
	_, err := r.Run(ctx, "sh", "-c", "sleep 30; true")
	elapsed := time.Since(start)
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Msg, "cancelled")
	assert.Less(t, elapsed, 5*time.Second)
}

func TestExecCancelWithOrphanHoldingStdout(t *testing.T) {
	requirePOSIXShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)
	r := NewExec(Options{TermGrace: 500 * time.Millisecond})
	start := time.Now()
	// the background sleep ignores TERM and keeps the stdout pipe open
	_, err := r.Run(ctx, "sh", "-c", "(trap '' TERM; sleep 30) & wait")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFakeRecordsCalls(t *testing.T) {
	f := &Fake{}
	_, err := f.Run(context.Background(), "ld", "-r", "a.a")
	require.NoError(t, err)
	_, err = f.Run(context.Background(), "llvm-ar")
	require.NoError(t, err)
	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "ld -r a.a", calls[0].String())
	assert.Equal(t, "llvm-ar", calls[1].String())
}
