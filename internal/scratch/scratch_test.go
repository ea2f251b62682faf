package scratch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRemovesOnSuccess(t *testing.T) {
	var seen string
	err := With(t.TempDir(), func(d *Dir) error {
		seen = d.Path
		assert.True(t, strings.HasPrefix(filepath.Base(d.Path), Prefix))
		return os.WriteFile(filepath.Join(d.Path, "libx.a"), []byte("!<arch>\n"), 0o644)
	})
	require.NoError(t, err)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithRemovesOnFailure(t *testing.T) {
	boom := errors.New("boom")
	var seen string
	err := With(t.TempDir(), func(d *Dir) error {
		seen = d.Path
		require.NoError(t, os.MkdirAll(filepath.Join(d.Path, "nested", "deeper"), 0o755))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewUniqueNames(t *testing.T) {
	parent := t.TempDir()
	a, err := New(parent)
	require.NoError(t, err)
	b, err := New(parent)
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
	require.NoError(t, a.Remove())
	require.NoError(t, b.Remove())
}

func TestNewMissingParent(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
