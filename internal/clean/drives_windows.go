//go:build windows

package clean

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

// TargetSecondaryDrives names the junk sweep of non-system drives.
const TargetSecondaryDrives = "Secondary Drive Junk"

// ─── Multi-Drive Scanning ────────────────────────────────────────────────────

// commonTempDirs are directory names commonly used for temporary files
// on secondary drives.
var commonTempDirs = []string{"Temp", "tmp"}

// commonJunkPatterns are file glob patterns for junk files found at a
// drive's root.
var commonJunkPatterns = []string{
	"*.tmp",
	"*.temp",
	"~$*",       // Office temp files
	"Thumbs.db", // Windows thumbnail cache
}

type secondaryDrives struct {
	logger zerolog.Logger
}

func platformProviders(logger zerolog.Logger) []Provider {
	if len(nonSystemDrives()) == 0 {
		return nil
	}
	return []Provider{&secondaryDrives{logger: logger}}
}

func (s *secondaryDrives) Name() string { return TargetSecondaryDrives }

func (s *secondaryDrives) Description() string {
	return "Temp folders and root-level junk files on non-system drives"
}

func (s *secondaryDrives) ListCandidateFiles(ctx context.Context) ([]string, error) {
	var files []string
	for _, root := range nonSystemDrives() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 1. Common temp directories on this drive.
		var rules []config.PathRule
		for _, tempDir := range commonTempDirs {
			rules = append(rules, config.PathRule{Dir: filepath.Join(root, tempDir), Recursive: true})
		}
		// 2. Per-user temp folders on data drives (D:\Users\*\AppData\Local\Temp).
		rules = append(rules, config.PathRule{
			Dir:       filepath.Join(root, "Users", "*", "AppData", "Local", "Temp"),
			Recursive: true,
		})

		p := newTargetProvider(config.CleanTarget{Name: TargetSecondaryDrives, Rules: rules}, s.logger)
		found, err := p.ListCandidateFiles(ctx)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)

		// 3. Root-level junk files.
		for _, pattern := range commonJunkPatterns {
			matches, err := filepath.Glob(filepath.Join(root, pattern))
			if err != nil {
				continue
			}
			for _, match := range matches {
				if info, err := os.Stat(match); err == nil && !info.IsDir() {
					files = append(files, match)
				}
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// nonSystemDrives returns mounted drive roots other than the system drive.
func nonSystemDrives() []string {
	sys := strings.ToUpper(config.SystemDrive())
	var roots []string
	for _, root := range driveRoots() {
		if strings.EqualFold(root, sys) {
			continue
		}
		roots = append(roots, root)
	}
	return roots
}
