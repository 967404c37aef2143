//go:build !windows

package scan

import "os"

// isReparsePoint reports directory symlinks, the closest equivalent of a
// junction outside Windows. os.ReadDir already reports symlinks as
// non-directories, so this only matters for callers holding a raw path.
func isReparsePoint(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

func longPath(path string) string {
	return path
}
