package config

import (
	"path/filepath"
	"time"
)

// AppName names the state directory and the config file's folder.
const AppName = "wintrack"

// PathRule selects candidate files under one directory.
type PathRule struct {
	// Dir is the directory to list. It may contain glob metacharacters
	// (e.g. Firefox's Profiles\*\cache2).
	Dir string

	// Recursive walks subdirectories; otherwise only Dir's direct files.
	Recursive bool

	// Extensions and NameContains are alternatives. When both are empty
	// every file matches.
	Extensions   []string
	NameContains []string

	// NamePrefix, when set, must prefix the file name.
	NamePrefix string

	// SkipDir prunes any directory whose path ends with it.
	SkipDir string

	// MinAge keeps only files not modified for at least this long.
	MinAge time.Duration
}

// CleanTarget represents a category of files that can be cleaned.
type CleanTarget struct {
	// Name is the unique identifier shown to the user.
	Name string

	// Description is a human-readable description.
	Description string

	Rules []PathRule

	// RequiresAdmin indicates whether elevated privileges are needed.
	RequiresAdmin bool

	// Category groups related targets ("user", "system", "browser").
	Category string

	// Detected targets are only offered when one of their directories exists.
	Detected bool
}

// Fixed target names.
const (
	TargetRecycleBin   = "Recycle Bin"
	TargetDefender     = "Microsoft Defender Antivirus"
	TargetDownloads    = "Downloads Folder"
	TargetTemp         = "Temp Files"
	TargetInetCache    = "Internet Cache"
	TargetThumbnails   = "Thumbnails"
	TargetShaderCache  = "DirectX Shader Cache"
	TargetDeliveryOpt  = "Delivery Optimization Files"
	TargetUpgradeLogs  = "Windows Upgrade Logs"
	TargetOldInstaller = "Old Installers"
)

// GetCleanTargets returns the path-based cleanup targets with paths
// expanded. The Recycle Bin and the Downloads folder are resolved through
// OS APIs and are not listed here.
func GetCleanTargets() []CleanTarget {
	local := LocalAppData()
	data := ProgramData()
	win := WinDir()
	defender := filepath.Join(data, "Microsoft", "Windows Defender")

	return []CleanTarget{
		// ── Defender ───────────────────────────────────────────
		{
			Name:        TargetDefender,
			Description: "Defender scan history, support logs and temporary files",
			Rules: []PathRule{
				{Dir: filepath.Join(defender, "Scans", "History"), Recursive: true, Extensions: defenderTempExts},
				{Dir: filepath.Join(defender, "Support"), Recursive: true, Extensions: defenderTempExts},
				{Dir: filepath.Join(defender, "Quarantine"), Recursive: true, Extensions: defenderTempExts, SkipDir: filepath.Join("Quarantine", "Entries")},
				{Dir: filepath.Join(defender, "Reporting"), Recursive: true, Extensions: defenderTempExts},
				{
					Dir:        filepath.Join(defender, "Scans", "History", "Service"),
					Recursive:  true,
					Extensions: []string{".dat", ".db", ".sqlite"},
					MinAge:     3 * 24 * time.Hour,
				},
			},
			RequiresAdmin: true,
			Category:      "system",
		},

		// ── Temp ───────────────────────────────────────────────
		{
			Name:        TargetTemp,
			Description: "User temporary files",
			Rules:       []PathRule{{Dir: TempDir()}},
			Category:    "user",
		},

		// ── Internet cache ─────────────────────────────────────
		{
			Name:        TargetInetCache,
			Description: "WinINet and legacy browser cache",
			Rules:       []PathRule{{Dir: filepath.Join(local, "Microsoft", "Windows", "INetCache"), Recursive: true}},
			Category:    "user",
		},

		// ── Thumbnails ─────────────────────────────────────────
		{
			Name:        TargetThumbnails,
			Description: "Windows Explorer thumbnail cache (thumbcache_*.db)",
			Rules:       []PathRule{{Dir: filepath.Join(local, "Microsoft", "Windows", "Explorer"), NamePrefix: "thumbcache"}},
			Category:    "user",
		},

		// ── Shader cache ───────────────────────────────────────
		{
			Name:        TargetShaderCache,
			Description: "DirectX shader cache (rebuilds automatically)",
			Rules:       []PathRule{{Dir: filepath.Join(local, "D3DSCache")}},
			Category:    "user",
		},

		// ── Delivery Optimization ──────────────────────────────
		{
			Name:        TargetDeliveryOpt,
			Description: "Delivery Optimization peer-to-peer update cache",
			Rules: []PathRule{
				deliveryRule(filepath.Join(win, "SoftwareDistribution", "DeliveryOptimization")),
				deliveryRule(filepath.Join(win, "SoftwareDistribution", "Delivery Optimization")),
				deliveryRule(filepath.Join(win, "SoftwareDistribution", "Download")),
				deliveryRule(filepath.Join(data, "Microsoft", "Windows", "DeliveryOptimization")),
			},
			RequiresAdmin: true,
			Category:      "system",
		},

		// ── Upgrade logs ───────────────────────────────────────
		{
			Name:          TargetUpgradeLogs,
			Description:   "Windows setup and upgrade logs (Panther)",
			Rules:         []PathRule{{Dir: filepath.Join(win, "Panther"), Recursive: true, Extensions: []string{".log"}}},
			RequiresAdmin: true,
			Category:      "system",
		},

		// ── Package cache ──────────────────────────────────────
		{
			Name:          TargetOldInstaller,
			Description:   "Cached installer packages in ProgramData\\Package Cache",
			Rules:         []PathRule{{Dir: filepath.Join(data, "Package Cache"), Recursive: true}},
			RequiresAdmin: true,
			Category:      "system",
		},
	}
}

var defenderTempExts = []string{".log", ".tmp", ".temp", ".old", ".bak"}

func deliveryRule(dir string) PathRule {
	return PathRule{
		Dir:          dir,
		Recursive:    true,
		Extensions:   []string{".temp", ".tmp", ".etl", ".log", ".dat", ".old"},
		NameContains: []string{"cache", "download", "content"},
	}
}

// GetBrowserTargets returns the browser cache targets. Each is Detected:
// the registry only offers it when the browser's cache exists.
func GetBrowserTargets() []CleanTarget {
	local := LocalAppData()
	roaming := AppData()

	browser := func(name, desc string, dirs ...string) CleanTarget {
		t := CleanTarget{Name: name, Description: desc, Category: "browser", Detected: true}
		for _, d := range dirs {
			t.Rules = append(t.Rules, PathRule{Dir: d, Recursive: true})
		}
		return t
	}

	return []CleanTarget{
		browser("Chrome Cache", "Google Chrome browser cache",
			filepath.Join(local, "Google", "Chrome", "User Data", "Default", "Cache")),
		browser("Edge Cache", "Microsoft Edge browser cache",
			filepath.Join(local, "Microsoft", "Edge", "User Data", "Default", "Cache")),
		browser("Firefox Cache", "Mozilla Firefox browser cache (cache2 within profiles)",
			filepath.Join(roaming, "Mozilla", "Firefox", "Profiles", "*", "cache2")),
		browser("Opera Cache", "Opera browser cache",
			filepath.Join(roaming, "Opera Software", "Opera Stable", "Cache")),
		browser("Brave Cache", "Brave browser cache",
			filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data", "Default", "Cache")),
		browser("Vivaldi Cache", "Vivaldi browser cache",
			filepath.Join(local, "Vivaldi", "User Data", "Default", "Cache")),
	}
}

// DefaultExcludedRoots returns the OS-managed folders a scan never
// descends into, rooted at the system drive.
func DefaultExcludedRoots() []string {
	sd := SystemDrive()
	return []string{
		filepath.Join(sd, "Windows"),
		filepath.Join(sd, "Program Files"),
		filepath.Join(sd, "Program Files (x86)"),
		filepath.Join(sd, "$Recycle.Bin"),
		filepath.Join(sd, "System Volume Information"),
	}
}

// GetNeverDeletePaths returns paths that must NEVER be deleted under any
// circumstances. This list uses environment variables to support Windows
// installations on any drive letter (not just C:).
func GetNeverDeletePaths() []string {
	w := WinDir()
	sd := SystemDrive()
	return []string{
		w,
		filepath.Join(w, "System32"),
		filepath.Join(w, "SysWOW64"),
		filepath.Join(w, "WinSxS"),
		filepath.Join(w, "assembly"),
		filepath.Join(w, "System32", "config"),
		filepath.Join(sd, "Boot"),
		filepath.Join(sd, "bootmgr"),
		filepath.Join(sd, "EFI"),
		programFiles(),
		programFilesX86(),
		filepath.Join(sd, "Users"),
		ProgramData(),
		filepath.Join(sd, "Recovery"),
		filepath.Join(w, "Installer"),
		filepath.Join(w, "servicing"),
		filepath.Join(w, "Prefetch"),
	}
}

// GetProtectedTrees returns directories whose whole contents are off limits,
// not just the directory entry itself.
func GetProtectedTrees() []string {
	w := WinDir()
	sd := SystemDrive()
	return []string{
		filepath.Join(w, "System32"),
		filepath.Join(w, "SysWOW64"),
		filepath.Join(w, "WinSxS"),
		filepath.Join(w, "servicing"),
		filepath.Join(sd, "Boot"),
		filepath.Join(sd, "EFI"),
		filepath.Join(sd, "Recovery"),
	}
}
