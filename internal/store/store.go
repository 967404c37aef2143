package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
)

const (
	// LatestFile is the baseline used by the next scan.
	LatestFile = "snapshot_files.json"

	// HistoryDir holds one file per saved snapshot.
	HistoryDir = "snapshot_backups"

	historyPrefix = "snapshot_"
	historyExt    = ".json"
	timeLayout    = "2006-01-02_15-04-05"
)

// json sorts map keys so saved snapshots diff cleanly by eye.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PersistenceError reports a failed save. Op is "history" or "latest".
// When Op is "latest" the history entry at HistoryPath was written but the
// baseline was not advanced.
type PersistenceError struct {
	Op          string
	Path        string
	HistoryPath string
	Err         error
}

func (e *PersistenceError) Error() string {
	if e.Op == "latest" && e.HistoryPath != "" {
		return fmt.Sprintf("write latest snapshot %s (history saved to %s): %v", e.Path, e.HistoryPath, e.Err)
	}
	return fmt.Sprintf("write %s snapshot %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Partial reports whether the history entry exists although the save failed.
func (e *PersistenceError) Partial() bool {
	return e.Op == "latest" && e.HistoryPath != ""
}

// SaveResult names the files a successful save wrote.
type SaveResult struct {
	HistoryPath string
	LatestPath  string
}

// HistoryEntry describes one saved snapshot file.
type HistoryEntry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
	Size    int64     `json:"size"`
}

// Store persists snapshots as pretty-printed JSON objects under a state
// directory: one latest file plus an append-only history directory.
type Store struct {
	fs     afero.Fs
	dir    string
	logger zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New returns a store rooted at dir on the given file system. A nil fs
// uses the OS file system.
func New(fs afero.Fs, dir string, logger zerolog.Logger) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{
		fs:     fs,
		dir:    filepath.Clean(dir),
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source used to name history entries.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// LatestPath returns the full path of the latest snapshot file.
func (s *Store) LatestPath() string {
	return filepath.Join(s.dir, LatestFile)
}

// HistoryPath returns the full path of the history directory.
func (s *Store) HistoryPath() string {
	return filepath.Join(s.dir, HistoryDir)
}

// Save appends snap to the history and then replaces the latest file with
// the same content. Both files are written to a temporary name and renamed
// into place, so a crash never leaves a half-written snapshot.
func (s *Store) Save(snap snapshot.Snapshot) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil {
		snap = snapshot.Snapshot{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return SaveResult{}, &PersistenceError{Op: "history", Path: s.HistoryPath(), Err: fmt.Errorf("encode snapshot: %w", err)}
	}

	historyPath, err := s.nextHistoryPath()
	if err != nil {
		return SaveResult{}, &PersistenceError{Op: "history", Path: s.HistoryPath(), Err: err}
	}
	if err := writeFileAtomic(s.fs, historyPath, data, 0o644); err != nil {
		return SaveResult{}, &PersistenceError{Op: "history", Path: historyPath, Err: err}
	}

	latestPath := s.LatestPath()
	if err := writeFileAtomic(s.fs, latestPath, data, 0o644); err != nil {
		return SaveResult{}, &PersistenceError{Op: "latest", Path: latestPath, HistoryPath: historyPath, Err: err}
	}

	s.logger.Debug().
		Str("history", historyPath).
		Int("files", len(snap)).
		Msg("snapshot saved")

	return SaveResult{HistoryPath: historyPath, LatestPath: latestPath}, nil
}

// nextHistoryPath picks a history file name that does not exist yet. Two
// saves within the same second get numeric suffixes.
func (s *Store) nextHistoryPath() (string, error) {
	dir := s.HistoryPath()
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}

	stamp := s.now().Format(timeLayout)
	for i := 0; i < 1000; i++ {
		name := historyPrefix + stamp + historyExt
		if i > 0 {
			name = fmt.Sprintf("%s%s_%d%s", historyPrefix, stamp, i, historyExt)
		}
		path := filepath.Join(dir, name)
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return "", fmt.Errorf("check history entry: %w", err)
		}
		if !exists {
			return path, nil
		}
	}
	return "", fmt.Errorf("no free history name for %s", stamp)
}

// LoadLatest returns the current baseline. A missing, unreadable, or
// malformed latest file is reported as absent; the last two are logged.
func (s *Store) LoadLatest() (snapshot.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.LatestPath()
	snap, err := s.readSnapshot(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", path).Msg("ignoring unusable latest snapshot")
		}
		return nil, false
	}
	return snap, true
}

// LoadHistory reads one history entry by file name (as reported by History)
// or by full path.
func (s *Store) LoadHistory(name string) (snapshot.Snapshot, error) {
	path := name
	if !filepath.IsAbs(name) && filepath.Dir(name) == "." {
		path = filepath.Join(s.HistoryPath(), name)
	}
	snap, err := s.readSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("load history entry %s: %w", name, err)
	}
	return snap, nil
}

// History lists saved snapshots, oldest first.
func (s *Store) History() ([]HistoryEntry, error) {
	infos, err := afero.ReadDir(s.fs, s.HistoryPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	var entries []HistoryEntry
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !strings.HasPrefix(name, historyPrefix) || !strings.HasSuffix(name, historyExt) {
			continue
		}
		entries = append(entries, HistoryEntry{
			Name:    name,
			Path:    filepath.Join(s.HistoryPath(), name),
			TakenAt: parseHistoryTime(name, info.ModTime()),
			Size:    info.Size(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].TakenAt.Equal(entries[j].TakenAt) {
			return entries[i].TakenAt.Before(entries[j].TakenAt)
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// parseHistoryTime recovers the timestamp from a history file name, falling
// back to the file's modification time.
func parseHistoryTime(name string, fallback time.Time) time.Time {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, historyPrefix), historyExt)
	if len(stamp) > len(timeLayout) {
		stamp = stamp[:len(timeLayout)]
	}
	t, err := time.ParseInLocation(timeLayout, stamp, time.Local)
	if err != nil {
		return fallback
	}
	return t
}

func (s *Store) readSnapshot(path string) (snapshot.Snapshot, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("decode %s: snapshot is null", path)
	}
	for p, size := range snap {
		if size < 0 {
			return nil, fmt.Errorf("decode %s: negative size for %s", path, p)
		}
	}
	return snap, nil
}
