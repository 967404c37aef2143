//go:build !windows

package clean

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

// newRecycleBin maps the Recycle Bin category onto the freedesktop trash.
func newRecycleBin(logger zerolog.Logger) Provider {
	return newTargetProvider(config.CleanTarget{
		Name:        config.TargetRecycleBin,
		Description: "Desktop trash (files and their .trashinfo records)",
		Rules: []config.PathRule{
			{Dir: filepath.Join(trashDir(), "files"), Recursive: true},
			{Dir: filepath.Join(trashDir(), "info"), Extensions: []string{".trashinfo"}},
		},
		Category: "user",
	}, logger)
}

func trashDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "Trash")
	}
	return filepath.Join(config.UserProfile(), ".local", "share", "Trash")
}

func platformProviders(zerolog.Logger) []Provider {
	return nil
}
