package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/proc"
)

func TestMergeArgumentOrder(t *testing.T) {
	f := &proc.Fake{}
	err := Merger{Runner: f}.Merge(context.Background(), "/s/libshoggoth.a", Inputs{
		Objects:          []string{"/b/main.o"},
		FlattenedObjects: []string{"/s/libnode.o", "/s/libv8.o"},
		Archives:         []string{"/b/libuv.a"},
	})
	require.NoError(t, err)
	require.Len(t, f.Calls(), 1)
	assert.Equal(t, "llvm-ar qcL /s/libshoggoth.a /b/main.o /s/libnode.o /s/libv8.o /b/libuv.a", f.Calls()[0].String())
}

func TestMergeEmptyInputs(t *testing.T) {
	f := &proc.Fake{}
	require.NoError(t, Merger{Runner: f, Ar: "ar"}.Merge(context.Background(), "/s/libx.a", Inputs{}))
	assert.Equal(t, "ar qcL /s/libx.a", f.Calls()[0].String())
}

func TestMergeFailure(t *testing.T) {
	f := &proc.Fake{Handler: func(program string, args []string) (proc.Result, error) {
		return proc.Result{}, &fault.SubprocessError{Program: program, Status: 1, Stderr: "bad archive"}
	}}
	err := Merger{Runner: f}.Merge(context.Background(), "/s/libx.a", Inputs{Objects: []string{"a.o"}})
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "program llvm-ar exited with status 1: bad archive", se.Error())
}
