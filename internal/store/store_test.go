package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
)

// failingFs refuses to open files whose base name matches failName.
type failingFs struct {
	afero.Fs
	failName string
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if strings.HasPrefix(filepath.Base(name), f.failName) && flag&os.O_CREATE != 0 {
		return nil, os.ErrPermission
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/state", zerolog.Nop())
	snap := snapshot.Snapshot{`C:\a.txt`: 10, "/b/c.log": 0, "/ünïcode": 1 << 33}

	res, err := s.Save(snap)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/state", LatestFile), res.LatestPath)
	assert.True(t, strings.HasPrefix(filepath.Base(res.HistoryPath), "snapshot_"))

	loaded, ok := s.LoadLatest()
	require.True(t, ok)
	assert.True(t, snap.Equal(loaded))
}

func TestSaveWritesPrettyJSONObject(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "/state", zerolog.Nop())
	_, err := s.Save(snapshot.Snapshot{"/b": 2, "/a": 1})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, s.LatestPath())
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"/a\": 1,\n  \"/b\": 2\n}", string(data))
}

func TestSaveEmptySnapshotIsABaseline(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/state", zerolog.Nop())
	_, err := s.Save(nil)
	require.NoError(t, err)

	loaded, ok := s.LoadLatest()
	require.True(t, ok)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestLoadLatestFirstRun(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/state", zerolog.Nop())
	snap, ok := s.LoadLatest()
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestLoadLatestMalformedIsAbsentAndLogged(t *testing.T) {
	for name, body := range map[string]string{
		"garbage":  "{not json",
		"null":     "null",
		"array":    "[1,2]",
		"negative": `{"/a": -1}`,
	} {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			var logs bytes.Buffer
			s := New(fs, "/state", zerolog.New(&logs))
			require.NoError(t, afero.WriteFile(fs, s.LatestPath(), []byte(body), 0o644))

			snap, ok := s.LoadLatest()
			assert.False(t, ok)
			assert.Nil(t, snap)
			assert.Contains(t, logs.String(), "ignoring unusable latest snapshot")
		})
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "/state", zerolog.Nop())
	s.SetClock(fixedClock(time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)))

	var paths []string
	for i := 0; i < 3; i++ {
		res, err := s.Save(snapshot.Snapshot{"/f": int64(i)})
		require.NoError(t, err)
		paths = append(paths, filepath.Base(res.HistoryPath))
	}

	assert.Equal(t, []string{
		"snapshot_2026-10-14_09-30-00.json",
		"snapshot_2026-10-14_09-30-00_1.json",
		"snapshot_2026-10-14_09-30-00_2.json",
	}, paths)

	first, err := s.LoadHistory(paths[0])
	require.NoError(t, err)
	assert.Equal(t, int64(0), first["/f"])

	latest, ok := s.LoadLatest()
	require.True(t, ok)
	assert.Equal(t, int64(2), latest["/f"])
}

func TestHistoryListing(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "/state", zerolog.Nop())

	entries, err := s.History()
	require.NoError(t, err)
	assert.Empty(t, entries)

	s.SetClock(fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)))
	_, err = s.Save(snapshot.Snapshot{"/x": 1})
	require.NoError(t, err)
	s.SetClock(fixedClock(time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local)))
	_, err = s.Save(snapshot.Snapshot{"/x": 2})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(s.HistoryPath(), "notes.txt"), []byte("x"), 0o644))

	entries, err = s.History()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "snapshot_2025-12-31_23-59-59.json", entries[0].Name)
	assert.Equal(t, 2026, entries[1].TakenAt.Year())
}

func TestSaveHistoryFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	s := New(afero.NewReadOnlyFs(base), "/state", zerolog.Nop())

	_, err := s.Save(snapshot.Snapshot{"/a": 1})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "history", perr.Op)
	assert.False(t, perr.Partial())

	exists, _ := afero.Exists(base, s.LatestPath())
	assert.False(t, exists)
}

func TestSaveLatestFailureIsPartialAndKeepsBaseline(t *testing.T) {
	base := afero.NewMemMapFs()
	good := New(base, "/state", zerolog.Nop())
	_, err := good.Save(snapshot.Snapshot{"/old": 1})
	require.NoError(t, err)

	s := New(failingFs{Fs: base, failName: LatestFile}, "/state", zerolog.Nop())
	s.SetClock(fixedClock(time.Now().Add(time.Hour)))
	_, err = s.Save(snapshot.Snapshot{"/new": 2})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "latest", perr.Op)
	assert.True(t, perr.Partial())
	assert.ErrorIs(t, err, os.ErrPermission)

	exists, _ := afero.Exists(base, perr.HistoryPath)
	assert.True(t, exists)

	baseline, ok := good.LoadLatest()
	require.True(t, ok)
	assert.Equal(t, snapshot.Snapshot{"/old": 1}, baseline)
}

func TestWriteFileAtomicLeavesNoTemp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFileAtomic(fs, "/d/f.json", []byte("1"), 0o644))
	require.NoError(t, writeFileAtomic(fs, "/d/f.json", []byte("2"), 0o644))

	data, err := afero.ReadFile(fs, "/d/f.json")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))

	exists, _ := afero.Exists(fs, "/d/f.json.tmp")
	assert.False(t, exists)
}

func TestStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	s := New(nil, dir, zerolog.Nop())
	snap := snapshot.Snapshot{filepath.Join(dir, "x"): 42}

	_, err := s.Save(snap)
	require.NoError(t, err)

	loaded, ok := New(nil, dir, zerolog.Nop()).LoadLatest()
	require.True(t, ok)
	assert.Equal(t, snap, loaded)
}
