package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Expand resolves environment variables in a path, supporting both
// Windows %VAR% and ${VAR} syntax. Bare $NAME is left alone so folder
// names like $Recycle.Bin survive, as do unknown variables.
func Expand(path string) string {
	return expandDelimited(expandDelimited(path, "%", "%"), "${", "}")
}

func expandDelimited(s, openTok, closeTok string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, openTok)
		if start < 0 {
			break
		}
		end := strings.Index(s[start+len(openTok):], closeTok)
		if end < 0 {
			break
		}
		name := s[start+len(openTok) : start+len(openTok)+end]
		whole := s[start : start+len(openTok)+end+len(closeTok)]
		b.WriteString(s[:start])
		if val, ok := os.LookupEnv(name); ok && name != "" {
			b.WriteString(val)
		} else {
			b.WriteString(whole)
		}
		s = s[start+len(whole):]
	}
	b.WriteString(s)
	return b.String()
}

// UserProfile returns the user profile directory.
func UserProfile() string {
	if p := os.Getenv("USERPROFILE"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return home
}

// LocalAppData returns the local app data directory.
func LocalAppData() string {
	return os.Getenv("LOCALAPPDATA")
}

// AppData returns the roaming app data directory.
func AppData() string {
	return os.Getenv("APPDATA")
}

// TempDir returns %TEMP%, falling back to the Windows temp directory
// on Windows and os.TempDir elsewhere.
func TempDir() string {
	if t := os.Getenv("TEMP"); t != "" {
		return t
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(WinDir(), "Temp")
	}
	return os.TempDir()
}

// WinDir returns the Windows directory (e.g., C:\Windows).
// Falls back to C:\Windows only if %WINDIR% is not set.
func WinDir() string {
	if w := os.Getenv("WINDIR"); w != "" {
		return w
	}
	return `C:\Windows`
}

// ProgramData returns the ProgramData directory (e.g., C:\ProgramData).
func ProgramData() string {
	if p := os.Getenv("PROGRAMDATA"); p != "" {
		return p
	}
	return `C:\ProgramData`
}

// SystemDrive returns the system drive root with a trailing separator
// (C:\ on Windows, / elsewhere).
func SystemDrive() string {
	if runtime.GOOS != "windows" {
		return string(filepath.Separator)
	}
	if d := os.Getenv("SYSTEMDRIVE"); d != "" {
		return d + `\`
	}
	return `C:\`
}

func programFiles() string {
	if p := os.Getenv("PROGRAMFILES"); p != "" {
		return p
	}
	return `C:\Program Files`
}

func programFilesX86() string {
	if p := os.Getenv("PROGRAMFILES(X86)"); p != "" {
		return p
	}
	return `C:\Program Files (x86)`
}

// StateDir is the default home of snapshots, the catalog and cleanup logs.
func StateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = UserProfile()
	}
	return filepath.Join(dir, AppName)
}
