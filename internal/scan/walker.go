package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
)

// Stats counts what a walk touched.
type Stats struct {
	Dirs    int64 `json:"dirs"`
	Files   int64 `json:"files"`
	Skipped int64 `json:"skipped"`
	Pruned  int64 `json:"pruned"`
}

// Walker enumerates a directory tree into a Snapshot.
type Walker struct {
	classifier *Classifier
	sem        chan struct{}
	logger     zerolog.Logger

	dirs    atomic.Int64
	files   atomic.Int64
	skipped atomic.Int64
	pruned  atomic.Int64
}

// NewWalker creates a walker with bounded ReadDir concurrency.
// maxConcurrency <= 0 falls back to 8.
func NewWalker(classifier *Classifier, maxConcurrency int, logger zerolog.Logger) *Walker {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	if classifier == nil {
		classifier = NewClassifier(nil, DefaultFoldCase())
	}
	return &Walker{
		classifier: classifier,
		sem:        make(chan struct{}, maxConcurrency),
		logger:     logger,
	}
}

// Stats returns the counters for the most recent walk.
func (w *Walker) Stats() Stats {
	return Stats{
		Dirs:    w.dirs.Load(),
		Files:   w.files.Load(),
		Skipped: w.skipped.Load(),
		Pruned:  w.pruned.Load(),
	}
}

// collector accumulates results from concurrent directory scans.
type collector struct {
	mu    sync.Mutex
	files snapshot.Snapshot
}

func (c *collector) add(path string, size int64) {
	c.mu.Lock()
	c.files[path] = size
	c.mu.Unlock()
}

// Walk scans root and returns every file that passes the filter.
//
// Excluded directories are pruned without being read. Unreadable
// directories and files are omitted; they never fail the walk. The only
// error Walk returns is the context's, when it is cancelled; cancellation
// is checked before each directory is read.
func (w *Walker) Walk(ctx context.Context, root string, filter Filter) (snapshot.Snapshot, error) {
	w.dirs.Store(0)
	w.files.Store(0)
	w.skipped.Store(0)
	w.pruned.Store(0)

	root = filepath.Clean(root)
	out := &collector{files: make(snapshot.Snapshot)}

	if w.classifier.IsExcluded(root) {
		w.pruned.Add(1)
		return out.files, nil
	}

	w.scanDir(ctx, root, filter, out)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out.files, nil
}

// scanDir reads one directory, records its files and fans out into its
// subdirectories. The semaphore is held only around ReadDir so nested
// goroutines cannot deadlock on it.
func (w *Walker) scanDir(ctx context.Context, dir string, filter Filter, out *collector) {
	if ctx.Err() != nil {
		return
	}

	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	entries, err := os.ReadDir(longPath(dir))
	<-w.sem

	if err != nil {
		w.skipped.Add(1)
		w.logger.Debug().Err(err).Str("dir", dir).Msg("cannot read directory")
		return
	}
	w.dirs.Add(1)

	var wg conc.WaitGroup
	for _, e := range entries {
		childPath := filepath.Join(dir, e.Name())

		if e.IsDir() {
			if w.classifier.IsExcluded(childPath) {
				w.pruned.Add(1)
				continue
			}
			// Never follow junctions or reparse points.
			if isReparsePoint(childPath) {
				w.skipped.Add(1)
				w.logger.Debug().Str("dir", childPath).Msg("skipping reparse point")
				continue
			}
			wg.Go(func() {
				w.scanDir(ctx, childPath, filter, out)
			})
			continue
		}

		// Junctions surface as irregular entries; pipes and devices have no size.
		if notAFile(e) {
			w.skipped.Add(1)
			w.logger.Debug().Str("path", childPath).Str("mode", e.Type().String()).Msg("skipping non-regular entry")
			continue
		}

		if !MatchesFilter(e.Name(), filter) {
			continue
		}

		size, ok := w.fileSize(childPath, e)
		if !ok {
			continue
		}
		w.files.Add(1)
		out.add(childPath, size)
	}
	wg.Wait()
}

// notAFile reports entries that are neither regular files, directories nor
// symlinks.
func notAFile(e os.DirEntry) bool {
	return e.Type()&(os.ModeIrregular|os.ModeNamedPipe|os.ModeSocket|os.ModeDevice) != 0
}

// fileSize stats a non-directory entry. Symlinks are followed; links that
// resolve to directories are not files and are not recorded.
func (w *Walker) fileSize(path string, e os.DirEntry) (int64, bool) {
	var (
		info os.FileInfo
		err  error
	)
	if e.Type()&os.ModeSymlink != 0 {
		info, err = os.Stat(longPath(path))
	} else {
		info, err = e.Info()
	}
	if err != nil {
		w.skipped.Add(1)
		w.logger.Debug().Err(err).Str("file", path).Msg("cannot stat file")
		return 0, false
	}
	if info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}
