package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/report"
	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
	"github.com/lakshaymaurya-felt/wintrack/internal/store"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
)

var (
	diffJSON bool
	diffToon bool
)

// latestArg names the current baseline in diff arguments.
const latestArg = "latest"

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compare two saved snapshots",
	Long: `Compare two saved snapshots without scanning. Each argument is a file
name from 'wt history', a path to a snapshot file, or "latest" for the
current baseline.

Examples:
  wt diff snapshot_2026-10-01_09-00-00.json latest
  wt diff old.json new.json --threshold 1MiB --json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	f := diffCmd.Flags()
	f.String("threshold", "", "Minimum growth to report, e.g. 10MiB (overrides track.threshold)")
	f.Int("top", 0, "Number of largest files to list (overrides track.top)")
	f.BoolVar(&diffJSON, "json", false, "Output as JSON")
	f.BoolVar(&diffToon, "toon", false, "Output in LLM-friendly toon format")
}

func loadSnapshot(st *store.Store, arg string) (snapshot.Snapshot, error) {
	if strings.EqualFold(arg, latestArg) {
		return st.LoadHistory(st.LatestPath())
	}
	return st.LoadHistory(arg)
}

func runDiff(cmd *cobra.Command, args []string) error {
	st := store.New(nil, settings.StateDir, logger)

	old, err := loadSnapshot(st, args[0])
	if err != nil {
		return err
	}
	cur, err := loadSnapshot(st, args[1])
	if err != nil {
		return err
	}

	outcome := tracker.Outcome{
		Root:        args[0] + " → " + args[1],
		Snapshot:    cur,
		Diff:        snapshot.Diff(old, cur, settings.Threshold),
		HadBaseline: true,
	}

	out := cmd.OutOrStdout()
	switch {
	case diffJSON:
		return report.WriteJSON(out, outcome, settings.Top)
	case diffToon:
		return report.WriteToon(out, outcome, settings.Top)
	}
	return report.WriteStatic(out, outcome, settings.Top)
}
