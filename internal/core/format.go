package core

import (
	"github.com/dustin/go-humanize"
)

// FormatSize renders a byte count in binary units ("10 MiB").
// Negative values keep their sign so growth deltas read naturally.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatDelta renders a size change with an explicit sign ("+10 MiB").
func FormatDelta(delta int64) string {
	if delta > 0 {
		return "+" + FormatSize(delta)
	}
	return FormatSize(delta)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
