package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

var (
	// ErrProtected is returned for paths on the never-delete list.
	ErrProtected = errors.New("path is protected")
	// ErrNotFile is returned when a delete target is a directory or device.
	ErrNotFile = errors.New("not a regular file")
)

// Guard decides whether a path may be deleted.
type Guard struct {
	exact []string
	trees []string
	fold  bool
}

// NewGuard builds a guard from explicit lists. Nil lists mean "nothing".
func NewGuard(exact, trees []string) *Guard {
	g := &Guard{fold: runtime.GOOS == "windows"}
	for _, p := range exact {
		g.exact = append(g.exact, g.norm(p))
	}
	for _, p := range trees {
		g.trees = append(g.trees, g.norm(p))
	}
	return g
}

// DefaultGuard protects the OS folders from config.GetNeverDeletePaths and
// everything beneath config.GetProtectedTrees.
func DefaultGuard() *Guard {
	return NewGuard(config.GetNeverDeletePaths(), config.GetProtectedTrees())
}

func (g *Guard) norm(p string) string {
	p = filepath.Clean(p)
	if g.fold {
		p = strings.ToLower(p)
	}
	return p
}

// IsProtected reports whether path must never be removed.
func (g *Guard) IsProtected(path string) bool {
	if path == "" {
		return true
	}
	p := g.norm(path)
	for _, e := range g.exact {
		if p == e {
			return true
		}
	}
	for _, t := range g.trees {
		if p == t || strings.HasPrefix(p, strings.TrimSuffix(t, string(filepath.Separator))+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// SafeDelete removes a single regular file and returns the bytes freed.
// Directories and protected paths are refused. A symlink is removed
// itself, never its target. With dryRun the file is only measured.
func (g *Guard) SafeDelete(path string, dryRun bool) (int64, error) {
	if g.IsProtected(path) {
		return 0, fmt.Errorf("delete %s: %w", path, ErrProtected)
	}

	info, err := os.Lstat(path)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", path, err)
	}
	if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
		return 0, fmt.Errorf("delete %s: %w", path, ErrNotFile)
	}

	size := info.Size()
	if dryRun {
		return size, nil
	}
	if err := os.Remove(path); err != nil {
		return 0, fmt.Errorf("delete %s: %w", path, err)
	}
	return size, nil
}

var defaultGuard = DefaultGuard()

// SafeDelete uses the default guard.
func SafeDelete(path string, dryRun bool) (int64, error) {
	return defaultGuard.SafeDelete(path, dryRun)
}
