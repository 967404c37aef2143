package clean

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
)

var (
	// ErrUnknownProvider is returned for a category name the registry lacks.
	ErrUnknownProvider = errors.New("unknown cleanup category")
	// ErrNothingToExport is returned by Export for an empty report.
	ErrNothingToExport = errors.New("nothing to export")
)

// Action is what happened to one candidate file.
type Action string

const (
	ActionDeleted     Action = "Deleted"
	ActionWouldDelete Action = "Would delete"
	ActionSkipped     Action = "Skipped"
	ActionFailed      Action = "Failed to delete"
	ActionEmptied     Action = "Emptied"
)

// LogEntry is one line of the cleanup log.
type LogEntry struct {
	Provider string
	Path     string
	Action   Action
	Reason   string
	Size     int64
	Err      error
}

func (e LogEntry) String() string {
	switch e.Action {
	case ActionDeleted:
		return fmt.Sprintf("Deleted: %s", e.Path)
	case ActionWouldDelete:
		return fmt.Sprintf("Would delete: %s (%s)", e.Path, core.FormatSize(e.Size))
	case ActionSkipped:
		return fmt.Sprintf("Skipped (%s): %s", e.Reason, e.Path)
	case ActionEmptied:
		return fmt.Sprintf("Emptied: %s", e.Provider)
	default:
		return fmt.Sprintf("Failed to delete: %s: %v", e.Path, e.Err)
	}
}

// Candidate is a file a provider offered for deletion.
type Candidate struct {
	Provider string
	Path     string
}

// Plan is the preview of a clean: every candidate, plus the categories
// whose listing failed.
type Plan struct {
	Candidates []Candidate
	Failures   map[string]error
}

// Report summarizes a clean run.
type Report struct {
	Entries  []LogEntry
	Failures map[string]error
	Total    int
	Deleted  int
	Freed    int64
	DryRun   bool
}

// Lines renders the log, one entry per line.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Entries)+len(r.Failures))
	for _, e := range r.Entries {
		lines = append(lines, e.String())
	}
	names := make([]string, 0, len(r.Failures))
	for name := range r.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("[Error] %s: %v", name, r.Failures[name]))
	}
	return lines
}

// Summary is the one-line result.
func (r Report) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Would delete %d out of %d files (%s).", r.Deleted, r.Total, core.FormatSize(r.Freed))
	}
	return fmt.Sprintf("Deleted %d out of %d files (%s freed).", r.Deleted, r.Total, core.FormatSize(r.Freed))
}

// ExportName is the log file name for a report written at t.
func ExportName(t time.Time) string {
	return "cleanup_log_" + t.Format("2006-01-02_15-04-05") + ".txt"
}

// Export writes the log to dir as cleanup_log_<timestamp>.txt and returns
// the file's path.
func (r Report) Export(dir string, now time.Time) (string, error) {
	lines := r.Lines()
	if len(lines) == 0 {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(dir, ExportName(now))
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("write cleanup log: %w", err)
	}
	return path, nil
}

// ProgressFunc is called after each candidate is handled.
type ProgressFunc func(done, total int, entry LogEntry)

// Cleaner deletes the candidate files of selected providers. It only
// removes files, never directories, and never a protected path.
type Cleaner struct {
	registry *Registry
	guard    *core.Guard
	logger   zerolog.Logger
	progress ProgressFunc
}

// NewCleaner builds a cleaner. A nil guard uses core.DefaultGuard.
func NewCleaner(registry *Registry, guard *core.Guard, logger zerolog.Logger) *Cleaner {
	if guard == nil {
		guard = core.DefaultGuard()
	}
	return &Cleaner{registry: registry, guard: guard, logger: logger}
}

// OnProgress registers a progress callback.
func (c *Cleaner) OnProgress(fn ProgressFunc) {
	c.progress = fn
}

func (c *Cleaner) resolve(names []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		p, ok := c.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// Preview lists the candidates of the named providers. A provider whose
// listing fails is recorded in Plan.Failures and the others still run.
func (c *Cleaner) Preview(ctx context.Context, names []string) (Plan, error) {
	providers, err := c.resolve(names)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Failures: make(map[string]error)}
	for _, p := range providers {
		files, err := p.ListCandidateFiles(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Plan{}, ctxErr
			}
			c.logger.Warn().Err(err).Str("provider", p.Name()).Msg("cannot list cleanup candidates")
			plan.Failures[p.Name()] = err
			continue
		}
		for _, f := range files {
			plan.Candidates = append(plan.Candidates, Candidate{Provider: p.Name(), Path: f})
		}
	}
	return plan, nil
}

// Clean deletes every candidate of the named providers. With dryRun the
// files are measured and logged but left in place.
func (c *Cleaner) Clean(ctx context.Context, names []string, dryRun bool) (Report, error) {
	plan, err := c.Preview(ctx, names)
	if err != nil {
		return Report{}, err
	}

	report := Report{Failures: plan.Failures, Total: len(plan.Candidates), DryRun: dryRun}
	for i, cand := range plan.Candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := c.deleteOne(cand, dryRun)
		if entry.Action == ActionDeleted || entry.Action == ActionWouldDelete {
			report.Deleted++
			report.Freed += entry.Size
		}
		report.Entries = append(report.Entries, entry)
		c.logEntry(entry)
		if c.progress != nil {
			c.progress(i+1, report.Total, entry)
		}
	}

	if !dryRun {
		providers, _ := c.resolve(names)
		for _, p := range providers {
			emptier, ok := p.(Emptier)
			if !ok {
				continue
			}
			entry := LogEntry{Provider: p.Name(), Action: ActionEmptied}
			if err := emptier.Empty(ctx); err != nil {
				entry = LogEntry{Provider: p.Name(), Path: p.Name(), Action: ActionFailed, Err: err}
			}
			report.Entries = append(report.Entries, entry)
			c.logEntry(entry)
		}
	}
	return report, nil
}

func (c *Cleaner) deleteOne(cand Candidate, dryRun bool) LogEntry {
	entry := LogEntry{Provider: cand.Provider, Path: cand.Path}
	size, err := c.guard.SafeDelete(cand.Path, dryRun)
	switch {
	case err == nil && dryRun:
		entry.Action, entry.Size = ActionWouldDelete, size
	case err == nil:
		entry.Action, entry.Size = ActionDeleted, size
	case errors.Is(err, core.ErrProtected):
		entry.Action, entry.Reason = ActionSkipped, "protected"
	case errors.Is(err, core.ErrNotFile), errors.Is(err, os.ErrNotExist):
		entry.Action, entry.Reason = ActionSkipped, "not file"
	default:
		entry.Action, entry.Err = ActionFailed, err
	}
	return entry
}

func (c *Cleaner) logEntry(e LogEntry) {
	var ev *zerolog.Event
	if e.Action == ActionFailed {
		ev = c.logger.Warn().Err(e.Err)
	} else {
		ev = c.logger.Info()
	}
	ev.Str("provider", e.Provider).Str("action", string(e.Action)).Msg(e.String())
}
