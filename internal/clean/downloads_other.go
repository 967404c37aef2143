//go:build !windows

package clean

import (
	"os"
	"path/filepath"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

// downloadsDir honours XDG_DOWNLOAD_DIR, falling back to ~/Downloads.
func downloadsDir() string {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(config.UserProfile(), "Downloads")
}
