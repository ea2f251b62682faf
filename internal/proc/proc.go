// Package proc runs external programs (ninja, ld, llvm-ar) behind a narrow
// interface so the pipeline can be exercised with canned responses.
package proc

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"syscall"
	"time"

	"github.com/alessio/shellescape"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/logging"
)

var log = logging.Log

// Result is the captured outcome of a finished program.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes one program to completion.
// A non-zero exit, a missing program or an output overflow is reported as a
// *fault.SubprocessError.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (Result, error)
}

// Options tune an Exec runner. Zero values mean unlimited.
type Options struct {
	// MaxStdout caps captured stdout in bytes.
	MaxStdout int
	// Timeout bounds each program. SIGTERM is sent first, SIGKILL after TermGrace.
	Timeout   time.Duration
	TermGrace time.Duration
}

// Exec is the os/exec backed Runner.
type Exec struct {
	opts Options
}

// NewExec returns a Runner that starts real processes.
func NewExec(opts Options) *Exec {
	if opts.TermGrace <= 0 {
		opts.TermGrace = 2 * time.Second
	}
	return &Exec{opts: opts}
}

type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.max <= 0 {
		_, _ = b.buf.Write(p)
		return n, nil
	}
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, program string, args ...string) (Result, error) {
	log.Debug("exec %s", shellescape.QuoteCommand(append([]string{program}, args...)))
	cmd := exec.Command(program, args...)
	// Own process group so termination reaches the tool's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// A grandchild holding stdout open must not block Wait forever.
	cmd.WaitDelay = e.opts.TermGrace

	outBuf := &limitedBuffer{max: e.opts.MaxStdout}
	var errBuf bytes.Buffer
	cmd.Stdout = outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) || errors.Is(err, fs.ErrNotExist) {
			return Result{}, &fault.SubprocessError{Program: program, Args: args, Status: -1, NotFound: true}
		}
		return Result{}, &fault.SubprocessError{Program: program, Args: args, Status: -1, Msg: "start failed: " + err.Error()}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timeout <-chan time.Time
	if e.opts.Timeout > 0 {
		timer := time.NewTimer(e.opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var runErr error
	timedOut := false
	select {
	case runErr = <-done:
	case <-ctx.Done():
		_ = e.terminate(cmd, done)
		res := Result{Stdout: outBuf.buf.Bytes(), Stderr: errBuf.Bytes()}
		return res, &fault.SubprocessError{Program: program, Args: args, Status: -1, Msg: "cancelled: " + ctx.Err().Error()}
	case <-timeout:
		timedOut = true
		runErr = e.terminate(cmd, done)
	}

	res := Result{Stdout: outBuf.buf.Bytes(), Stderr: errBuf.Bytes()}
	if timedOut {
		return res, &fault.SubprocessError{Program: program, Args: args, Status: -2, TimedOut: true, Stderr: errBuf.String()}
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return res, &fault.SubprocessError{Program: program, Args: args, Status: exitErr.ExitCode(), Stderr: errBuf.String()}
		}
		return res, &fault.SubprocessError{Program: program, Args: args, Status: -1, Msg: "execution failed: " + runErr.Error()}
	}
	if outBuf.truncated {
		return res, &fault.SubprocessError{Program: program, Args: args, Msg: "stdout exceeded limit"}
	}
	return res, nil
}

// terminate stops the process group politely, then forcefully.
func (e *Exec) terminate(cmd *exec.Cmd, done <-chan error) error {
	signalProcess(cmd, syscall.SIGTERM)
	grace := time.NewTimer(e.opts.TermGrace)
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
		signalProcess(cmd, syscall.SIGKILL)
		return <-done
	}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid > 0 && cmd.SysProcAttr != nil && cmd.SysProcAttr.Setpgid {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}
