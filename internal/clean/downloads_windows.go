//go:build windows

package clean

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

const (
	shellFoldersKey = `Software\Microsoft\Windows\CurrentVersion\Explorer\Shell Folders`
	downloadsGUID   = "{374DE290-123F-4565-9164-39C4925E467B}"
)

// downloadsDir reads the Downloads location from the user's shell folders,
// falling back to %USERPROFILE%\Downloads.
func downloadsDir() string {
	fallback := filepath.Join(config.UserProfile(), "Downloads")

	key, err := registry.OpenKey(registry.CURRENT_USER, shellFoldersKey, registry.QUERY_VALUE)
	if err != nil {
		return fallback
	}
	defer key.Close()

	dir, _, err := key.GetStringValue(downloadsGUID)
	if err != nil || dir == "" {
		return fallback
	}
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		return fallback
	}
	return dir
}
