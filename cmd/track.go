package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/report"
	"github.com/lakshaymaurya-felt/wintrack/internal/scan"
	"github.com/lakshaymaurya-felt/wintrack/internal/store"
	"github.com/lakshaymaurya-felt/wintrack/internal/store/catalog"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
	"github.com/lakshaymaurya-felt/wintrack/internal/tui"
)

var (
	trackExt    string
	trackJSON   bool
	trackToon   bool
	trackStatic bool
)

var trackCmd = &cobra.Command{
	Use:   "track [root]",
	Short: "Scan a directory tree and report changes since the last scan",
	Long: `Scan a directory tree, compare it against the saved baseline, and save
the result as the new baseline.

The report lists the largest files with their change, then deleted files.
A file counts as grown when it got bigger by more than the threshold.

Examples:
  wt track
  wt track D:\ --ext log
  wt track --static --top 50
  wt track --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrack,
}

func init() {
	addTrackFlags(trackCmd)
}

func addTrackFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&trackExt, "ext", "", "Only track files with this extension (e.g. log, .txt)")
	f.Int("top", 0, "Number of largest files to list (overrides track.top)")
	f.String("threshold", "", "Minimum growth to report, e.g. 10MiB (overrides track.threshold)")
	f.Int("workers", 0, "Concurrent directory reads (overrides track.workers)")
	f.Bool("catalog", true, "Index scans in the SQLite catalog")
	f.BoolVar(&trackJSON, "json", false, "Output as JSON")
	f.BoolVar(&trackToon, "toon", false, "Output in LLM-friendly toon format")
	f.BoolVar(&trackStatic, "static", false, "Print a plain report instead of the interactive view")
}

// newOrchestrator wires the walker, store, and catalog from settings. The
// returned cleanup closes the catalog.
func newOrchestrator() (*tracker.Orchestrator, func(), error) {
	classifier := scan.NewClassifier(settings.ScanExclusions(), scan.DefaultFoldCase())
	walker := scan.NewWalker(classifier, settings.Workers, logger)
	st := store.New(nil, settings.StateDir, logger)

	opts := tracker.Options{
		Walker:    walker,
		Store:     st,
		Notifier:  tracker.LogNotifier{Logger: logger},
		Threshold: settings.Threshold,
		Logger:    logger,
	}

	cleanup := func() {}
	if settings.Catalog {
		cat, err := catalog.Open(settings.CatalogPath())
		if err != nil {
			logger.Warn().Err(err).Msg("scan catalog unavailable")
		} else {
			opts.Recorder = cat
			cleanup = func() {
				if err := cat.Close(); err != nil {
					logger.Warn().Err(err).Msg("close scan catalog")
				}
			}
		}
	}

	orch, err := tracker.New(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return orch, cleanup, nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	root := settings.Root
	if len(args) > 0 {
		root = args[0]
	}
	filter := scan.NormalizeFilter(trackExt)

	out := cmd.OutOrStdout()
	orch, cleanup, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	if !trackJSON && !trackToon && !trackStatic && isTerminal(out) {
		return runInteractive(cmd, orch, root, filter)
	}

	req := tracker.Request{Root: root, Filter: filter}
	if !trackJSON && !trackToon {
		errOut := cmd.ErrOrStderr()
		req.Progress = func(status string) { fmt.Fprintln(errOut, status) }
	}

	ch, err := orch.Start(cmd.Context(), req)
	if err != nil {
		return err
	}
	outcome := <-ch

	switch {
	case trackJSON:
		if outcome.Err != nil {
			return outcome.Err
		}
		return report.WriteJSON(out, outcome, settings.Top)
	case trackToon:
		if outcome.Err != nil {
			return outcome.Err
		}
		return report.WriteToon(out, outcome, settings.Top)
	}

	if err := report.WriteStatic(out, outcome, settings.Top); err != nil {
		return err
	}
	if outcome.Err != nil {
		return ErrSilent
	}
	return nil
}

func runInteractive(cmd *cobra.Command, orch *tracker.Orchestrator, root string, filter scan.Filter) error {
	m := tui.New(cmd.Context(), orch, root, filter, settings.Top)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running tracker: %w", err)
	}

	if fm, ok := final.(tui.Model); ok {
		if outcome, ok := fm.Outcome(); ok && outcome.OK() {
			fmt.Fprintf(cmd.OutOrStdout(), "File Scan Complete: %s\n", outcome.Summary())
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
