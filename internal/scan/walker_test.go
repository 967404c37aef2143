package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]int) {
	t.Helper()
	for rel, size := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, make([]byte, size), 0o644))
	}
}

func newTestWalker(excluded ...string) *Walker {
	return NewWalker(NewClassifier(excluded, DefaultFoldCase()), 4, zerolog.Nop())
}

func TestWalkCollectsSizes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"a.txt":         3,
		"dir/b.log":     10,
		"dir/sub/c.txt": 0,
	})

	snap, err := newTestWalker().Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)

	assert.Equal(t, int64(3), snap[filepath.Join(root, "a.txt")])
	assert.Equal(t, int64(10), snap[filepath.Join(root, "dir", "b.log")])
	assert.Contains(t, snap, filepath.Join(root, "dir", "sub", "c.txt"))
	assert.Len(t, snap, 3)
}

func TestWalkPrunesExcludedRoots(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"Windows/System32/kernel.dll": 5,
		"Windows/notepad.exe":         5,
		"WindowsApps/app.exe":         5,
		"Users/me/doc.txt":            5,
	})
	excluded := filepath.Join(root, "Windows")

	w := newTestWalker(excluded)
	snap, err := w.Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)

	for path := range snap {
		assert.False(t, strings.HasPrefix(path, excluded+string(filepath.Separator)), "walked into %s", path)
	}
	assert.Contains(t, snap, filepath.Join(root, "WindowsApps", "app.exe"))
	assert.Contains(t, snap, filepath.Join(root, "Users", "me", "doc.txt"))
	assert.Equal(t, int64(1), w.Stats().Pruned)
}

func TestWalkExcludedRootItself(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a.txt": 1})

	snap, err := newTestWalker(root).Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestWalkFilterIsSubsetOfUnfiltered(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"a.txt":       1,
		"B.TXT":       2,
		"c.log":       3,
		"n/d.txt":     4,
		"n/e.txt.bak": 5,
	})
	w := newTestWalker()

	filtered, err := w.Walk(context.Background(), root, NormalizeFilter("txt"))
	require.NoError(t, err)
	all, err := w.Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)

	assert.Len(t, filtered, 3)
	for path, size := range filtered {
		assert.True(t, strings.HasSuffix(strings.ToLower(path), ".txt"), path)
		assert.Equal(t, all[path], size)
	}
	assert.Len(t, all, 5)
}

func TestWalkIsDeterministic(t *testing.T) {
	root := t.TempDir()
	files := map[string]int{}
	for _, d := range []string{"a", "b", "c", "d"} {
		for _, f := range []string{"1.bin", "2.bin", "3.bin"} {
			files[d+"/"+d+"/"+f] = len(d) + len(f)
		}
	}
	writeTree(t, root, files)

	first, err := newTestWalker().Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)
	second, err := NewWalker(nil, 1, zerolog.Nop()).Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Len(t, first, 12)
}

func TestWalkCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a/b.txt": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := newTestWalker().Walk(ctx, root, NoFilter)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, snap)
}

func TestWalkSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on Windows")
	}
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, map[string]int{"target.bin": 7, "dir/inner.bin": 1})
	require.NoError(t, os.Symlink(filepath.Join(outside, "target.bin"), filepath.Join(root, "link.bin")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "dir"), filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "missing"), filepath.Join(root, "dangling")))

	w := newTestWalker()
	snap, err := w.Walk(context.Background(), root, NoFilter)
	require.NoError(t, err)

	assert.Equal(t, int64(7), snap[filepath.Join(root, "link.bin")])
	assert.NotContains(t, snap, filepath.Join(root, "linkdir"))
	assert.NotContains(t, snap, filepath.Join(root, "linkdir", "inner.bin"))
	assert.NotContains(t, snap, filepath.Join(root, "dangling"))
	assert.Equal(t, int64(1), w.Stats().Skipped)
}

func TestWalkMissingRootYieldsEmptySnapshot(t *testing.T) {
	snap, err := newTestWalker().Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), NoFilter)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

type modeEntry struct {
	name string
	mode os.FileMode
}

func (e modeEntry) Name() string               { return e.name }
func (e modeEntry) IsDir() bool                { return e.mode.IsDir() }
func (e modeEntry) Type() os.FileMode          { return e.mode.Type() }
func (e modeEntry) Info() (os.FileInfo, error) { return nil, os.ErrNotExist }

func TestNotAFile(t *testing.T) {
	assert.True(t, notAFile(modeEntry{"Application Data", os.ModeIrregular}))
	assert.True(t, notAFile(modeEntry{"pipe", os.ModeNamedPipe}))
	assert.True(t, notAFile(modeEntry{"sock", os.ModeSocket}))
	assert.True(t, notAFile(modeEntry{"tty", os.ModeDevice | os.ModeCharDevice}))
	assert.False(t, notAFile(modeEntry{"a.txt", 0}))
	assert.False(t, notAFile(modeEntry{"link", os.ModeSymlink}))
}
