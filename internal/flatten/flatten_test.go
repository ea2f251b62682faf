package flatten

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/gypi"
	"github.com/flarebyte/shoggoth/internal/proc"
)

func TestLinuxStrategy(t *testing.T) {
	f := &proc.Fake{}
	objs, err := All(context.Background(), ForPlatform(Linux, gypi.ArchX64, f, ""), "/tmp/s", []string{"/b/libnode.a", "/b/obj/libuv.a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/s/libnode.o", "/tmp/s/libuv.o"}, objs)
	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "ld -r --whole-archive /b/libnode.a --no-whole-archive -o /tmp/s/libnode.o", calls[0].String())
	assert.Equal(t, "ld -r --whole-archive /b/obj/libuv.a --no-whole-archive -o /tmp/s/libuv.o", calls[1].String())
}

func TestDarwinStrategyTranslatesArch(t *testing.T) {
	tests := []struct {
		arch gypi.Arch
		want string
	}{
		{gypi.ArchX64, "x86_64"},
		{gypi.ArchArm64, "arm64"},
	}
	for _, tc := range tests {
		t.Run(string(tc.arch), func(t *testing.T) {
			f := &proc.Fake{}
			_, err := All(context.Background(), ForPlatform(Darwin, tc.arch, f, "/usr/bin/ld"), "/s", []string{"/b/libv8.a"})
			require.NoError(t, err)
			require.Len(t, f.Calls(), 1)
			assert.Equal(t, "/usr/bin/ld -r -arch "+tc.want+" -force_load /b/libv8.a -o /s/libv8.o", f.Calls()[0].String())
		})
	}
}

func TestDarwinUnknownArch(t *testing.T) {
	f := &proc.Fake{}
	_, err := All(context.Background(), ForPlatform(Darwin, gypi.ArchPPC64, f, ""), "/s", []string{"/b/libv8.a"})
	var ue *fault.UnsupportedPlatformError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "ppc64", ue.Arch)
	assert.Empty(t, f.Calls())
}

func TestUnsupportedPlatformRunsNothing(t *testing.T) {
	for _, archives := range [][]string{nil, {"/b/liba.a"}} {
		f := &proc.Fake{}
		_, err := All(context.Background(), ForPlatform(Platform("windows"), gypi.ArchX64, f, ""), "/s", archives)
		var ue *fault.UnsupportedPlatformError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, "unsupported platform windows", ue.Error())
		assert.Equal(t, fault.ExitUnsupported, ue.ExitCode())
		assert.Empty(t, f.Calls())
	}
}

func TestFailFast(t *testing.T) {
	f := &proc.Fake{Handler: func(program string, args []string) (proc.Result, error) {
		return proc.Result{}, &fault.SubprocessError{Program: program, Status: 1}
	}}
	_, err := All(context.Background(), ForPlatform(Linux, gypi.ArchX64, f, ""), "/s", []string{"/b/a.a", "/b/b.a"})
	var se *fault.SubprocessError
	require.True(t, errors.As(err, &se))
	assert.Len(t, f.Calls(), 1)
	assert.Contains(t, err.Error(), "flatten a.a")
}

func TestObjectNamesDisambiguates(t *testing.T) {
	got := ObjectNames("/s", []string{"/b/x/libbase.a", "/b/y/libbase.a", "/b/z/libbase.a", "/b/libother.a"})
	assert.Equal(t, []string{"/s/libbase.o", "/s/libbase-1.o", "/s/libbase-2.o", "/s/libother.o"}, got)

	tests := [][]string{
		{"/a/libx.a", "/b/libx.a", "/c/libx-1.a"},
		{"/c/libx-1.a", "/a/libx.a", "/b/libx.a"},
		{"/a/libx.a", "/b/libx-1.a", "/c/libx.a", "/d/libx.a"},
	}
	for _, archives := range tests {
		got := ObjectNames("/s", archives)
		require.Len(t, got, len(archives))
		seen := map[string]bool{}
		for _, obj := range got {
			assert.False(t, seen[obj], "%v: %s produced twice", archives, obj)
			seen[obj] = true
		}
	}
	assert.Equal(t, []string{"/s/libx.o", "/s/libx-1.o", "/s/libx-1-1.o"},
		ObjectNames("/s", []string{"/a/libx.a", "/b/libx.a", "/c/libx-1.a"}))
}
