package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
)

// ─── Palette ────────────────────────────────────────────────────────────────

var (
	ColorPrimary   = lipgloss.Color("#7D56F4")
	ColorSecondary = lipgloss.Color("#5AC8FA")
	ColorCoral     = lipgloss.Color("#FF7F6B")
	ColorSuccess   = lipgloss.Color("#4CD964")
	ColorWarning   = lipgloss.Color("#FFCC00")
	ColorError     = lipgloss.Color("#FF3B30")
	ColorText      = lipgloss.Color("#E6E6E6")
	ColorTextDim   = lipgloss.Color("#A0A0A0")
	ColorMuted     = lipgloss.Color("#6C6C6C")
)

// ─── Icons ──────────────────────────────────────────────────────────────────

const (
	IconDiamond = "◆"
	IconChevron = "›"
	IconBullet  = "•"
	IconBlock   = "▌"
	IconPipe    = "│"
	IconFolder  = "▸ "
	IconSuccess = "✓"
	IconWarning = "!"
	IconError   = "✗"
	IconNew     = "+"
	IconDeleted = "-"
)

// ─── Styles ─────────────────────────────────────────────────────────────────

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorCoral)
}

func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
}

func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
}

func TagSuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
}

func TagErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError).Bold(true)
}

// FormatSize renders a byte count for display.
func FormatSize(bytes int64) string {
	return core.FormatSize(bytes)
}

// GradientBar draws a usage bar pct (0-100) wide across width cells,
// shifting from success to error as it fills.
func GradientBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))

	color := ColorSuccess
	switch {
	case pct >= 90:
		color = ColorError
	case pct >= 70:
		color = ColorWarning
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("░", width-filled))
	return bar + rest
}
