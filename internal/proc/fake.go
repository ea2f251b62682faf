package proc

import (
	"context"
	"strings"
	"sync"
)

// Call is one recorded invocation on a Fake.
type Call struct {
	Program string
	Args    []string
}

// String renders the call as a space separated command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Fake is a Runner that records calls and answers from a handler.
// With no handler every call succeeds with empty output.
type Fake struct {
	Handler func(program string, args []string) (Result, error)

	mu    sync.Mutex
	calls []Call
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, program string, args ...string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Program: program, Args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.Handler == nil {
		return Result{}, nil
	}
	return f.Handler(program, args)
}

// Calls returns a copy of the recorded calls in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
