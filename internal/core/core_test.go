package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "200 B", FormatSize(200))
	assert.Equal(t, "10 MiB", FormatSize(10*1024*1024))
	assert.Equal(t, "-1.5 KiB", FormatSize(-1536))
	assert.Equal(t, "+10 MiB", FormatDelta(10*1024*1024))
	assert.Equal(t, "0 B", FormatDelta(0))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestGuard(t *testing.T) {
	root := t.TempDir()
	sys := filepath.Join(root, "Windows", "System32")
	g := NewGuard([]string{filepath.Join(root, "Users")}, []string{sys})

	assert.True(t, g.IsProtected(""))
	assert.True(t, g.IsProtected(filepath.Join(root, "Users")))
	assert.False(t, g.IsProtected(filepath.Join(root, "Users", "me", "Downloads", "a.zip")))
	assert.True(t, g.IsProtected(sys))
	assert.True(t, g.IsProtected(filepath.Join(sys, "drivers", "etc", "hosts")))
	assert.False(t, g.IsProtected(filepath.Join(root, "Windows", "System32x", "f")))
}

func TestSafeDelete(t *testing.T) {
	dir := t.TempDir()
	g := NewGuard(nil, []string{filepath.Join(dir, "keep")})

	file := filepath.Join(dir, "junk.tmp")
	require.NoError(t, os.WriteFile(file, []byte("12345"), 0o644))

	freed, err := g.SafeDelete(file, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), freed)
	assert.FileExists(t, file)

	freed, err = g.SafeDelete(file, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), freed)
	assert.NoFileExists(t, file)

	_, err = g.SafeDelete(file, false)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = g.SafeDelete(dir, false)
	assert.ErrorIs(t, err, ErrNotFile)
	assert.DirExists(t, dir)

	kept := filepath.Join(dir, "keep", "x")
	require.NoError(t, os.MkdirAll(filepath.Dir(kept), 0o755))
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0o644))
	_, err = g.SafeDelete(kept, false)
	assert.ErrorIs(t, err, ErrProtected)
	assert.FileExists(t, kept)
}

func TestOSVersionString(t *testing.T) {
	assert.NotEmpty(t, OSVersionString())
}
