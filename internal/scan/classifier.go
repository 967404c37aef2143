package scan

import (
	"path/filepath"
	"runtime"
	"strings"
)

// KnownExtensions are the single-extension filters offered to the user.
var KnownExtensions = []string{
	".exe", ".dll", ".sys", ".ini", ".bat", ".cmd", ".com", ".msi", ".cab",
	".txt", ".log", ".csv", ".json", ".xml", ".yml", ".yaml",
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".ico",
	".mp4", ".avi", ".mkv", ".mov", ".wmv",
	".mp3", ".wav", ".flac", ".aac",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf",
	".zip", ".rar", ".7z", ".tar", ".gz",
	".html", ".htm", ".css", ".js", ".ts", ".php", ".asp", ".aspx",
	".py", ".java", ".cpp", ".c", ".cs", ".rb", ".go", ".rs",
	".db", ".sqlite", ".bak", ".iso",
}

// Filter is an optional extension constraint. The zero value matches every
// file. Build one with NormalizeFilter.
type Filter string

// NoFilter matches all files.
const NoFilter Filter = ""

// NormalizeFilter lowercases an extension and ensures it has a leading dot.
// "TXT", "txt" and ".Txt" all become ".txt". Blank input yields NoFilter.
func NormalizeFilter(ext string) Filter {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimPrefix(ext, "*")
	if ext == "" || ext == "." {
		return NoFilter
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return Filter(ext)
}

// String returns the extension, or "*" when unset.
func (f Filter) String() string {
	if f == NoFilter {
		return "*"
	}
	return string(f)
}

// DefaultFoldCase reports whether path comparison should ignore case on the
// current platform's default file system.
func DefaultFoldCase() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// Classifier decides whether directories are excluded and whether files
// pass the extension filter. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	roots    []string
	foldCase bool
}

// NewClassifier builds a classifier over the given excluded roots. Blank
// roots are dropped; the rest are cleaned so that "C:\Windows\" and
// "C:\Windows" behave the same.
func NewClassifier(excludedRoots []string, foldCase bool) *Classifier {
	c := &Classifier{foldCase: foldCase}
	for _, root := range excludedRoots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		c.roots = append(c.roots, c.normalize(root))
	}
	return c
}

// ExcludedRoots returns the normalized excluded roots.
func (c *Classifier) ExcludedRoots() []string {
	return append([]string(nil), c.roots...)
}

func (c *Classifier) normalize(path string) string {
	path = filepath.Clean(path)
	if c.foldCase {
		path = strings.ToLower(path)
	}
	return path
}

// IsExcluded reports whether path equals, or is nested under, any excluded
// root. Matching respects separator boundaries, so "C:\WindowsApps" is not
// under "C:\Windows".
func (c *Classifier) IsExcluded(path string) bool {
	if len(c.roots) == 0 {
		return false
	}
	p := c.normalize(path)
	for _, root := range c.roots {
		if p == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// MatchesFilter reports whether a file name passes the filter. Matching is a
// case-insensitive suffix test, so ".tar.gz" filters work as well as ".gz".
func MatchesFilter(name string, filter Filter) bool {
	if filter == NoFilter {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), string(filter))
}

// Matches is MatchesFilter as a method, so a *Classifier can be handed to
// code that wants both decisions from one value.
func (c *Classifier) Matches(name string, filter Filter) bool {
	return MatchesFilter(name, filter)
}
