package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alpkeskin/gotoon"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
	"github.com/lakshaymaurya-felt/wintrack/internal/store"
	"github.com/lakshaymaurya-felt/wintrack/internal/store/catalog"
)

var (
	historyLimit int
	historyJSON  bool
	historyToon  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved snapshots and past scans",
	Long: `List the snapshot files in the history directory, newest first, together
with the scans recorded in the catalog.

Examples:
  wt history
  wt history --limit 5
  wt history --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most this many entries (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().BoolVar(&historyToon, "toon", false, "Output in LLM-friendly toon format")
}

type historyListing struct {
	StateDir  string               `json:"state_dir"`
	Snapshots []store.HistoryEntry `json:"snapshots"`
	Scans     []catalog.Entry      `json:"scans"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st := store.New(nil, settings.StateDir, logger)
	entries, err := st.History()
	if err != nil {
		return err
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}

	listing := historyListing{
		StateDir:  settings.StateDir,
		Snapshots: entries,
		Scans:     loadScans(cmd, historyLimit),
	}
	if listing.Snapshots == nil {
		listing.Snapshots = []store.HistoryEntry{}
	}
	if listing.Scans == nil {
		listing.Scans = []catalog.Entry{}
	}

	out := cmd.OutOrStdout()
	switch {
	case historyJSON:
		data, err := jsoniter.MarshalIndent(listing, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case historyToon:
		encoded, err := gotoon.Encode(listing)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(out, encoded)
		return nil
	}

	writeHistory(out, listing)
	return nil
}

func loadScans(cmd *cobra.Command, limit int) []catalog.Entry {
	if !settings.Catalog {
		return nil
	}
	cat, err := catalog.Open(settings.CatalogPath())
	if err != nil {
		logger.Warn().Err(err).Msg("scan catalog unavailable")
		return nil
	}
	defer cat.Close()

	scans, err := cat.List(cmd.Context(), limit)
	if err != nil {
		logger.Warn().Err(err).Msg("cannot list scans")
		return nil
	}
	return scans
}

func writeHistory(w io.Writer, l historyListing) {
	fmt.Fprintf(w, "Snapshots in %s\n", l.StateDir)
	fmt.Fprintln(w, strings.Repeat("━", 40))
	if len(l.Snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots saved yet. Run 'wt track' first.")
		return
	}
	for _, e := range l.Snapshots {
		fmt.Fprintf(w, "  %-40s %s  %10s\n", e.Name, e.TakenAt.Format(time.DateTime), core.FormatSize(e.Size))
	}

	if len(l.Scans) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent scans")
	fmt.Fprintln(w, strings.Repeat("━", 40))
	for _, s := range l.Scans {
		baseline := "baseline"
		if s.HadBaseline {
			baseline = fmt.Sprintf("%d new, %d grew, %d deleted", s.NewCount, s.GrownCount, s.DeletedCount)
		}
		filter := s.Filter
		if filter == "" {
			filter = "*"
		}
		fmt.Fprintf(w, "  %s  %s [%s]  %s files, %s  %s\n",
			s.FinishedAt.Format(time.DateTime), s.Root, filter,
			core.FormatCount(s.FileCount), core.FormatSize(s.TotalBytes), baseline)
	}
}
