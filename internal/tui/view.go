package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
	"github.com/lakshaymaurya-felt/wintrack/internal/ui"
)

// ─── Top-level view ──────────────────────────────────────────────────────────

func (m Model) renderView() string {
	if m.quitting {
		return ""
	}
	w := m.width
	if w < 40 {
		w = 40
	}

	var s strings.Builder
	s.WriteString(m.renderHeader(w))
	s.WriteString("\n")
	s.WriteString(m.renderBody())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

// ─── Header ──────────────────────────────────────────────────────────────────

func (m Model) renderHeader(w int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorCoral).
		Render("  " + ui.IconDiamond + " File Change Tracker")

	info := fmt.Sprintf("  %s    filter %s", m.root, m.filter.String())
	if m.outcome != nil && m.outcome.OK() {
		info += fmt.Sprintf("    %s files    %s",
			core.FormatCount(m.outcome.Snapshot.Len()),
			core.FormatSize(m.outcome.Snapshot.TotalSize()))
	}
	pathLine := lipgloss.NewStyle().Foreground(ui.ColorTextDim).Render(info)

	inner := lipgloss.JoinVertical(lipgloss.Left, title, pathLine)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorCoral).
		Width(w - 2).
		Render(inner)
}

// ─── Body ────────────────────────────────────────────────────────────────────

func (m Model) renderBody() string {
	if m.scanning {
		return fmt.Sprintf("\n  %s %s\n", m.spinner.View(), m.status)
	}

	status := lipgloss.NewStyle().Foreground(ui.ColorText)
	if m.outcome != nil && !m.outcome.OK() {
		status = ui.TagErrorStyle()
	}
	line := status.Render("  " + m.status)

	if m.outcome == nil || !m.outcome.OK() {
		return "\n" + line + "\n"
	}
	if !m.outcome.HadBaseline {
		line += "\n" + ui.HintBarStyle().Render("  First scan: baseline saved, nothing to compare yet.")
	}
	return line + "\n\n" + m.table.View()
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m Model) renderFooter() string {
	keys := []string{"↑/↓ scroll", "r rescan", "f filter", "q quit"}
	if m.scanning {
		keys = []string{"q quit"}
	}
	return ui.HintBarStyle().Render("  " + strings.Join(keys, "  "+ui.IconPipe+"  "))
}
