package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/wintrack/internal/scan"
	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
)

type fakeScanner struct {
	reqs []tracker.Request
	ch   chan tracker.Outcome
	err  error
}

func (f *fakeScanner) Start(_ context.Context, req tracker.Request) (<-chan tracker.Outcome, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func finished() tracker.Outcome {
	old := snapshot.Snapshot{"/a": 100, "/b": 200}
	cur := snapshot.Snapshot{"/b": 11_000_000, "/c": 5}
	return tracker.Outcome{
		Root:        "/",
		Snapshot:    cur,
		Diff:        snapshot.Diff(old, cur, snapshot.DefaultGrowthThreshold),
		HadBaseline: true,
	}
}

func TestNewModelStartsScanning(t *testing.T) {
	m := New(context.Background(), &fakeScanner{}, "/", scan.NoFilter, 0)
	assert.True(t, m.scanning)
	assert.Equal(t, 20, m.topN)
	assert.Contains(t, m.View(), "Starting scan...")
	assert.NotNil(t, m.Init())

	_, ok := m.Outcome()
	assert.False(t, ok)
}

func TestStartScanCommand(t *testing.T) {
	fs := &fakeScanner{ch: make(chan tracker.Outcome, 1)}
	m := New(context.Background(), fs, "/data", scan.NormalizeFilter("log"), 5)

	msg := m.startScan()()
	started, ok := msg.(startedMsg)
	require.True(t, ok)
	require.Len(t, fs.reqs, 1)
	assert.Equal(t, "/data", fs.reqs[0].Root)
	assert.Equal(t, scan.Filter(".log"), fs.reqs[0].Filter)

	// The progress callback feeds the model's channel.
	fs.reqs[0].Progress("Scanning /data for file changes...")
	m, _ = update(t, m, waitForProgress(m.progress)())
	assert.Equal(t, "Scanning /data for file changes...", m.status)

	fs.ch <- finished()
	m, _ = update(t, m, waitForOutcome(started.outcomes)())
	assert.False(t, m.scanning)
	assert.Contains(t, m.status, "1 new, 1 grew, 1 deleted")
}

func TestOutcomeFillsTable(t *testing.T) {
	m := New(context.Background(), &fakeScanner{}, "/", scan.NoFilter, 20)
	m, cmd := update(t, m, outcomeMsg(finished()))
	assert.Nil(t, cmd)

	rows := m.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "/b", rows[0][0])
	assert.Equal(t, "+10 MiB", rows[0][2])
	assert.Equal(t, "Deleted", rows[2][2])

	out, ok := m.Outcome()
	require.True(t, ok)
	assert.True(t, out.OK())

	view := m.View()
	assert.Contains(t, view, "Scan complete.")
	assert.Contains(t, view, "File Path")
	assert.Contains(t, view, "r rescan")
}

func TestFailedOutcomeShowsError(t *testing.T) {
	m := New(context.Background(), &fakeScanner{}, "/", scan.NoFilter, 20)
	m, _ = update(t, m, outcomeMsg(tracker.Outcome{Err: errors.New("disk gone")}))
	assert.Empty(t, m.table.Rows())
	assert.Contains(t, m.View(), "Scan failed: disk gone")
}

func TestBusyStartKeepsScanning(t *testing.T) {
	fs := &fakeScanner{err: tracker.ErrBusy}
	m := New(context.Background(), fs, "/", scan.NoFilter, 20)

	m, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, m.startScan()())
	assert.True(t, m.scanning)
	assert.Equal(t, "A scan is already running.", m.status)
}

func TestStartErrorStopsScanning(t *testing.T) {
	fs := &fakeScanner{err: &tracker.ConfigError{Root: "/nope", Err: errors.New("not found")}}
	m := New(context.Background(), fs, "/nope", scan.NoFilter, 20)
	m, _ = update(t, m, m.startScan()())
	assert.False(t, m.scanning)
	assert.True(t, strings.HasPrefix(m.status, "Cannot start scan:"))
}

func TestFilterCyclesOnlyWhenIdle(t *testing.T) {
	m := New(context.Background(), &fakeScanner{}, "/", scan.NoFilter, 20)
	m, _ = update(t, m, key("f"))
	assert.Equal(t, scan.NoFilter, m.filter)

	m, _ = update(t, m, outcomeMsg(finished()))
	m, _ = update(t, m, key("f"))
	assert.Equal(t, scan.NormalizeFilter(scan.KnownExtensions[0]), m.filter)

	for range scan.KnownExtensions {
		m, _ = update(t, m, key("f"))
	}
	assert.Equal(t, scan.NoFilter, m.filter)
}

func TestQuitCancelsContext(t *testing.T) {
	m := New(context.Background(), &fakeScanner{}, "/", scan.NoFilter, 20)
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.ctx.Err())
	assert.Empty(t, m.View())
}

func TestWindowResize(t *testing.T) {
	m := New(context.Background(), &fakeScanner{}, "/", scan.NoFilter, 20)
	m, _ = update(t, m, outcomeMsg(finished()))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	assert.Equal(t, 140, m.width)
	assert.Len(t, m.table.Rows(), 3)
}
