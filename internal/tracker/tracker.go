package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/wintrack/internal/scan"
	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
	"github.com/lakshaymaurya-felt/wintrack/internal/store"
	"github.com/lakshaymaurya-felt/wintrack/internal/store/catalog"
)

// ErrBusy is returned when a scan is requested while one is already running.
var ErrBusy = errors.New("scan already in progress")

// ConfigError reports an unusable scan root. It is returned before any
// walk begins.
type ConfigError struct {
	Root string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid scan root %q: %v", e.Root, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// State is the orchestrator's lifecycle position.
type State int

const (
	Idle State = iota
	Scanning
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Walker produces a snapshot of a tree.
type Walker interface {
	Walk(ctx context.Context, root string, filter scan.Filter) (snapshot.Snapshot, error)
}

// Store loads the baseline and persists new snapshots.
type Store interface {
	LoadLatest() (snapshot.Snapshot, bool)
	Save(snap snapshot.Snapshot) (store.SaveResult, error)
}

// Recorder indexes completed scans. Failures are logged, not fatal.
type Recorder interface {
	Record(ctx context.Context, e catalog.Entry) error
}

// ProgressFunc receives human-readable status lines from the worker.
type ProgressFunc func(status string)

// Options configures an Orchestrator. Walker and Store are required.
type Options struct {
	Walker    Walker
	Store     Store
	Recorder  Recorder
	Notifier  Notifier
	// Threshold is the growth, in bytes, a file must exceed to be reported
	// as grown. It is used as given: zero (or negative) reports any growth.
	// Callers wanting the default policy pass snapshot.DefaultGrowthThreshold,
	// which is what the track.threshold setting resolves to.
	Threshold int64
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Request describes one scan.
type Request struct {
	Root     string
	Filter   scan.Filter
	Progress ProgressFunc
}

// Outcome is the terminal result of a scan. Err is set on failure, in
// which case Snapshot and Diff are empty.
type Outcome struct {
	ID          string              `json:"id"`
	Root        string              `json:"root"`
	Filter      scan.Filter         `json:"filter"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	Snapshot    snapshot.Snapshot   `json:"-"`
	Diff        snapshot.DiffResult `json:"diff"`
	HadBaseline bool                `json:"had_baseline"`
	HistoryPath string              `json:"history_path,omitempty"`
	Err         error               `json:"-"`
}

// OK reports whether the scan finished successfully.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Busy reports whether the scan was rejected because another was running.
func (o Outcome) Busy() bool {
	return errors.Is(o.Err, ErrBusy)
}

// Summary returns the short "<N> new, <M> grew, <K> deleted" line.
func (o Outcome) Summary() string {
	return o.Diff.Summary()
}

// Orchestrator runs Walk, Load, Diff, and Save for one scan at a time on a
// background goroutine.
type Orchestrator struct {
	walker    Walker
	store     Store
	recorder  Recorder
	notifier  Notifier
	threshold int64
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// New validates options and returns an idle orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Walker == nil {
		return nil, errors.New("tracker: walker is required")
	}
	if opts.Store == nil {
		return nil, errors.New("tracker: store is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		walker:    opts.Walker,
		store:     opts.Store,
		recorder:  opts.Recorder,
		notifier:  opts.Notifier,
		threshold: opts.Threshold,
		logger:    opts.Logger,
		now:       opts.Now,
		state:     Idle,
	}, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start validates the request and launches the scan worker. The returned
// channel receives exactly one Outcome and is then closed. Start fails with
// ErrBusy while another scan is running and with a *ConfigError when the
// root is missing or not a directory.
func (o *Orchestrator) Start(ctx context.Context, req Request) (<-chan Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	o.mu.Lock()
	if o.state == Scanning {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	root, err := validateRoot(req.Root)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.state = Scanning
	o.mu.Unlock()

	req.Root = root
	ch := make(chan Outcome, 1)
	go o.run(ctx, req, ch)
	return ch, nil
}

// RunScan runs a scan and waits for its outcome. Rejections (busy or bad
// root) come back as an Outcome with Err set.
func (o *Orchestrator) RunScan(ctx context.Context, root string, filter scan.Filter) Outcome {
	ch, err := o.Start(ctx, Request{Root: root, Filter: filter})
	if err != nil {
		return Outcome{Root: root, Filter: filter, Err: err}
	}
	return <-ch
}

func validateRoot(root string) (string, error) {
	if root == "" {
		return "", &ConfigError{Root: root, Err: errors.New("root path is empty")}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &ConfigError{Root: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &ConfigError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return "", &ConfigError{Root: root, Err: errors.New("not a directory")}
	}
	return abs, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request, ch chan<- Outcome) {
	out := Outcome{
		ID:        uuid.NewString(),
		Root:      req.Root,
		Filter:    req.Filter,
		StartedAt: o.now(),
	}
	progress := req.Progress
	if progress == nil {
		progress = func(string) {}
	}

	defer close(ch)
	defer func() {
		if r := recover(); r != nil {
			out = o.fail(out, fmt.Errorf("scan panicked: %v", r))
			ch <- out
		}
	}()

	o.logger.Info().Str("id", out.ID).Str("root", req.Root).Str("filter", req.Filter.String()).Msg("scan started")
	progress(fmt.Sprintf("Scanning %s for file changes...", req.Root))

	current, err := o.walker.Walk(ctx, req.Root, req.Filter)
	if err != nil {
		ch <- o.fail(out, fmt.Errorf("walk %s: %w", req.Root, err))
		return
	}

	progress(fmt.Sprintf("Comparing %d files against the baseline...", len(current)))
	previous, hadBaseline := o.store.LoadLatest()
	if !hadBaseline {
		previous = nil
	}
	diff := snapshot.Diff(previous, current, o.threshold)

	// The baseline only advances for scans that were not cancelled.
	if err := ctx.Err(); err != nil {
		ch <- o.fail(out, fmt.Errorf("scan cancelled: %w", err))
		return
	}

	saved, err := o.store.Save(current)
	if err != nil {
		ch <- o.fail(out, err)
		return
	}

	out.Snapshot = current
	out.Diff = diff
	out.HadBaseline = hadBaseline
	out.HistoryPath = saved.HistoryPath
	out.FinishedAt = o.now()

	o.mu.Lock()
	o.state = Finished
	o.mu.Unlock()

	o.logger.Info().
		Str("id", out.ID).
		Int("files", len(current)).
		Str("summary", out.Summary()).
		Dur("elapsed", out.FinishedAt.Sub(out.StartedAt)).
		Msg("scan finished")
	o.afterSave(ctx, out, progress)

	ch <- out
}

// afterSave records, reports and announces a saved scan. The baseline has
// already advanced, so a panic here is logged and the scan stays Finished.
func (o *Orchestrator) afterSave(ctx context.Context, out Outcome, progress ProgressFunc) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("id", out.ID).Interface("panic", r).Msg("post-scan step panicked")
		}
	}()

	o.record(ctx, out)
	progress("Scan complete.")
	if o.notifier != nil {
		o.notifier.Notify("File Scan Complete", out.Summary())
	}
}

func (o *Orchestrator) fail(out Outcome, err error) Outcome {
	out.Err = err
	out.Snapshot = nil
	out.Diff = snapshot.DiffResult{}
	out.FinishedAt = o.now()

	o.mu.Lock()
	o.state = Failed
	o.mu.Unlock()

	o.logger.Error().Err(err).Str("id", out.ID).Str("root", out.Root).Msg("scan failed")
	return out
}

func (o *Orchestrator) record(ctx context.Context, out Outcome) {
	if o.recorder == nil {
		return
	}
	n, g, d := out.Diff.Counts()
	entry := catalog.Entry{
		ID:           out.ID,
		Root:         out.Root,
		Filter:       out.Filter.String(),
		StartedAt:    out.StartedAt,
		FinishedAt:   out.FinishedAt,
		FileCount:    len(out.Snapshot),
		TotalBytes:   out.Snapshot.TotalSize(),
		NewCount:     n,
		GrownCount:   g,
		DeletedCount: d,
		HadBaseline:  out.HadBaseline,
		HistoryFile:  filepath.Base(out.HistoryPath),
	}
	if err := o.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.Warn().Err(err).Str("id", out.ID).Msg("cannot record scan in catalog")
	}
}
