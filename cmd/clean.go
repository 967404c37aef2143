package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/clean"
	"github.com/lakshaymaurya-felt/wintrack/internal/core"
	"github.com/lakshaymaurya-felt/wintrack/internal/ui"
)

var (
	cleanList   bool
	cleanAll    bool
	cleanDryRun bool
	cleanExport bool
)

// newRegistry builds the cleanup categories; tests replace it.
var newRegistry = clean.DefaultRegistry

var cleanCmd = &cobra.Command{
	Use:   "clean [category...]",
	Short: "Free up disk space",
	Long: `Delete the files of the chosen cleanup categories: temp files, caches,
logs, the Recycle Bin, and browser leftovers. Only files are deleted,
never directories, and system paths are always skipped.

Examples:
  wt clean --list
  wt clean "Temporary Files" "Thumbnail Cache" --dry-run
  wt clean --all --export`,
	RunE: runClean,
}

func init() {
	f := cleanCmd.Flags()
	f.BoolVar(&cleanList, "list", false, "List the available categories and exit")
	f.BoolVar(&cleanAll, "all", false, "Clean all categories")
	f.BoolVar(&cleanDryRun, "dry-run", false, "Preview the cleanup plan without deleting")
	f.BoolVar(&cleanExport, "export", false, "Save the cleanup log to the log directory")
	f.String("log-dir", "", "Directory for exported cleanup logs (overrides clean.log_dir)")
}

func runClean(cmd *cobra.Command, args []string) error {
	reg := newRegistry(logger)
	out := cmd.OutOrStdout()

	if cleanList {
		return writeCategories(out, reg)
	}

	names := args
	if cleanAll {
		names = reg.Names()
	}
	if len(names) == 0 {
		return errors.New("choose at least one category, or pass --all (see 'wt clean --list')")
	}

	cleaner := clean.NewCleaner(reg, nil, logger)
	cleaner.OnProgress(func(done, total int, entry clean.LogEntry) {
		logger.Debug().Int("done", done).Int("total", total).Msg(entry.String())
	})

	rep, err := cleaner.Clean(cmd.Context(), names, cleanDryRun)
	if err != nil {
		return err
	}

	for _, line := range rep.Lines() {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, rep.Summary())

	if cleanExport {
		path, err := rep.Export(settings.CleanLogDir, time.Now())
		if errors.Is(err, clean.ErrNothingToExport) {
			fmt.Fprintln(out, "Nothing to export.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Log saved to %s\n", path)
	}
	return nil
}

func writeCategories(w io.Writer, reg *clean.Registry) error {
	title := ui.TitleStyle()
	for _, p := range reg.Providers() {
		size := ""
		if s, ok := p.(clean.Sizer); ok {
			if n, err := s.TotalSize(); err == nil {
				size = " (" + core.FormatSize(n) + ")"
			} else {
				logger.Debug().Err(err).Str("provider", p.Name()).Msg("cannot size category")
			}
		}
		if _, err := fmt.Fprintf(w, "  %s %s%s\n    %s\n", ui.IconBullet, title.Render(p.Name()), size, p.Description()); err != nil {
			return err
		}
	}
	return nil
}
