package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
	"github.com/lakshaymaurya-felt/wintrack/internal/ui"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteStatic prints the change view as plain text. It is the fallback for
// consoles where the interactive view cannot render, and the output of
// --static. Styling degrades to plain text when w is not a terminal.
func WriteStatic(w io.Writer, out tracker.Outcome, topN int) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(ui.ColorCoral)
	dim := r.NewStyle().Foreground(ui.ColorMuted)

	var b strings.Builder
	if !out.OK() {
		fmt.Fprintf(&b, "  %s Scan failed: %v\n", ui.IconError, out.Err)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "  %s\n", title.Render(ui.IconDiamond+" File changes: "+out.Root))
	fmt.Fprintf(&b, "  Filter: %s    Files: %s    Total: %s\n",
		out.Filter.String(), core.FormatCount(out.Snapshot.Len()), core.FormatSize(out.Snapshot.TotalSize()))
	b.WriteString("  " + strings.Repeat("-", 58) + "\n")

	rows := Rows(out, topN)
	if len(rows) == 0 {
		b.WriteString(dim.Render("  No files found.") + "\n")
	}

	width := 0
	for _, row := range rows {
		if n := len(row.Path); n > width {
			width = n
		}
	}
	if width > 100 {
		width = 100
	}

	for _, row := range rows {
		fmt.Fprintf(&b, "  %-*s  %10s  %s\n", width, row.Path, row.SizeText(), row.Change)
	}

	b.WriteString("  " + strings.Repeat("-", 58) + "\n")
	if !out.HadBaseline {
		b.WriteString(dim.Render("  First scan: baseline saved, nothing to compare yet.") + "\n")
	}
	fmt.Fprintf(&b, "  %s\n", out.Summary())

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON prints the outcome as indented JSON.
func WriteJSON(w io.Writer, out tracker.Outcome, topN int) error {
	data, err := json.MarshalIndent(NewDocument(out, topN), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteToon prints the outcome in toon notation.
func WriteToon(w io.Writer, out tracker.Outcome, topN int) error {
	output, err := gotoon.Encode(NewDocument(out, topN))
	if err != nil {
		return fmt.Errorf("failed to encode Toon: %w", err)
	}
	_, err = fmt.Fprintln(w, output)
	return err
}
