package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/wintrack/internal/scan"
	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
)

func scenario() tracker.Outcome {
	old := snapshot.Snapshot{"/a": 100, "/b": 200}
	cur := snapshot.Snapshot{"/b": 11_000_000, "/c": 5}
	return tracker.Outcome{
		ID:          "id-1",
		Root:        "/",
		Filter:      scan.NoFilter,
		StartedAt:   time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2026, 10, 14, 9, 1, 0, 0, time.UTC),
		Snapshot:    cur,
		Diff:        snapshot.Diff(old, cur, snapshot.DefaultGrowthThreshold),
		HadBaseline: true,
	}
}

func TestRowsScenario(t *testing.T) {
	rows := Rows(scenario(), 20)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Path: "/b", Size: 11_000_000, Known: true, Change: "+10 MiB", Kind: KindTop}, rows[0])
	assert.Equal(t, Row{Path: "/c", Size: 5, Known: true, Change: ChangeNew, Kind: KindTop}, rows[1])
	assert.Equal(t, Row{Path: "/a", Change: ChangeDeleted, Kind: KindDeleted}, rows[2])
	assert.Equal(t, NoSize, rows[2].SizeText())
}

func TestRowsListsNewFilesOutsideTop(t *testing.T) {
	old := snapshot.Snapshot{"/big": 1000}
	cur := snapshot.Snapshot{"/big": 1000, "/n1": 1, "/n2": 2}
	out := tracker.Outcome{Snapshot: cur, Diff: snapshot.Diff(old, cur, 0), HadBaseline: true}

	rows := Rows(out, 1)
	require.Len(t, rows, 3)
	assert.Equal(t, "/big", rows[0].Path)
	assert.Empty(t, rows[0].Change)
	assert.Equal(t, []string{"/n1", "/n2"}, []string{rows[1].Path, rows[2].Path})
	assert.Equal(t, KindNew, rows[1].Kind)
}

func TestRowsDefaultTop(t *testing.T) {
	cur := snapshot.Snapshot{}
	for i := 0; i < 30; i++ {
		cur[fmt.Sprintf("/f%02d", i)] = int64(i)
	}
	rows := Rows(tracker.Outcome{Snapshot: cur}, 0)
	assert.Len(t, rows, DefaultTop)
	assert.Equal(t, "/f29", rows[0].Path)
}

func TestWriteStatic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatic(&buf, scenario(), 20))
	text := buf.String()

	assert.Contains(t, text, "File changes: /")
	assert.Contains(t, text, "+10 MiB")
	assert.Contains(t, text, "Deleted")
	assert.Contains(t, text, "1 new, 1 grew, 1 deleted")
	assert.Less(t, strings.Index(text, "/b"), strings.Index(text, "/a "))
	assert.NotContains(t, text, "First scan")
}

func TestWriteStaticFirstScanAndFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatic(&buf, tracker.Outcome{Root: "/", Snapshot: snapshot.Snapshot{}}, 20))
	assert.Contains(t, buf.String(), "No files found.")
	assert.Contains(t, buf.String(), "First scan")

	buf.Reset()
	require.NoError(t, WriteStatic(&buf, tracker.Outcome{Err: errors.New("disk gone")}, 20))
	assert.Contains(t, buf.String(), "Scan failed: disk gone")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, scenario(), 20))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "id-1", doc.ID)
	assert.Equal(t, "*", doc.Filter)
	assert.Equal(t, 2, doc.Files)
	assert.Equal(t, "1 new, 1 grew, 1 deleted", doc.Summary)
	assert.Equal(t, []string{"/a"}, doc.Deleted)
	assert.Equal(t, int64(10_999_800), doc.Grown[0].Delta)
	assert.Equal(t, "2026-10-14T09:01:00Z", doc.FinishedAt)
}

func TestDocumentEmptyListsAreNotNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tracker.Outcome{Snapshot: snapshot.Snapshot{}}, 5))
	assert.Contains(t, buf.String(), `"new": []`)
	assert.Contains(t, buf.String(), `"deleted": []`)
	assert.NotContains(t, buf.String(), "null")
}

func TestWriteToon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteToon(&buf, scenario(), 20))
	assert.Contains(t, buf.String(), "id-1")
	assert.Contains(t, buf.String(), "summary")
}
