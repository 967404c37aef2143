package snapshot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffScenario(t *testing.T) {
	old := Snapshot{"/a": 100, "/b": 200}
	cur := Snapshot{"/b": 11000000, "/c": 50}

	result := Diff(old, cur, 1000000)

	assert.Equal(t, []FileRecord{{Path: "/c", Size: 50}}, result.New)
	assert.Equal(t, []Growth{{Path: "/b", Delta: 10999800}}, result.Grown)
	assert.Equal(t, []string{"/a"}, result.Deleted)
	assert.Equal(t, "1 new, 1 grew, 1 deleted", result.Summary())
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	snaps := []Snapshot{
		{},
		{"/x": 0},
		{"/a": 1, "/b": 2, "/c/d": 1 << 40},
	}
	for _, s := range snaps {
		for _, threshold := range []int64{0, 1, DefaultGrowthThreshold} {
			result := Diff(s, s.Clone(), threshold)
			assert.True(t, result.Empty(), "snapshot %v threshold %d", s, threshold)
		}
	}
}

func TestDiffNoBaseline(t *testing.T) {
	result := Diff(nil, Snapshot{"/a": 1, "/b": 2}, DefaultGrowthThreshold)
	assert.True(t, result.Empty())
	assert.Equal(t, "0 new, 0 grew, 0 deleted", result.Summary())
}

func TestDiffEmptyBaselineReportsEverythingNew(t *testing.T) {
	result := Diff(Snapshot{}, Snapshot{"/b": 2, "/a": 1}, DefaultGrowthThreshold)
	assert.Equal(t, []FileRecord{{Path: "/a", Size: 1}, {Path: "/b", Size: 2}}, result.New)
	assert.Empty(t, result.Grown)
	assert.Empty(t, result.Deleted)
}

func TestDiffThresholdBoundary(t *testing.T) {
	const base = 4096
	old := Snapshot{"/exact": base, "/over": base}
	cur := Snapshot{
		"/exact": base + DefaultGrowthThreshold,
		"/over":  base + DefaultGrowthThreshold + 1,
	}

	result := Diff(old, cur, DefaultGrowthThreshold)

	require.Len(t, result.Grown, 1)
	assert.Equal(t, "/over", result.Grown[0].Path)
	assert.Equal(t, int64(10485761), result.Grown[0].Delta)
}

func TestDiffShrinkIsNotReported(t *testing.T) {
	result := Diff(Snapshot{"/a": 500}, Snapshot{"/a": 1}, 0)
	assert.True(t, result.Empty())
}

func TestDiffNegativeThresholdActsAsZero(t *testing.T) {
	result := Diff(Snapshot{"/a": 5, "/b": 5}, Snapshot{"/a": 5, "/b": 6}, -10)
	assert.Equal(t, []Growth{{Path: "/b", Delta: 1}}, result.Grown)
}

func TestDiffDisjointSetsCoverUnion(t *testing.T) {
	old := make(Snapshot)
	cur := make(Snapshot)
	for i := 0; i < 50; i++ {
		old[fmt.Sprintf("/old/%d", i)] = int64(i)
		cur[fmt.Sprintf("/new/%d", i)] = int64(i * 3)
	}

	result := Diff(old, cur, 0)

	seen := make(map[string]int)
	for _, r := range result.New {
		seen[r.Path]++
	}
	for _, g := range result.Grown {
		seen[g.Path]++
	}
	for _, p := range result.Deleted {
		seen[p]++
	}

	assert.Len(t, seen, len(old)+len(cur))
	for path, count := range seen {
		assert.Equal(t, 1, count, "path %s appears in more than one set", path)
		_, inOld := old[path]
		_, inCur := cur[path]
		assert.True(t, inOld || inCur)
	}
}

func TestDifferUsesBoundThreshold(t *testing.T) {
	d := NewDiffer(10)
	result := d.Diff(Snapshot{"/a": 0, "/b": 0}, Snapshot{"/a": 10, "/b": 11})
	assert.Equal(t, []Growth{{Path: "/b", Delta: 11}}, result.Grown)
}

func TestSnapshotTopOrdersBySizeThenPath(t *testing.T) {
	s := Snapshot{"/b": 10, "/a": 10, "/c": 99, "/d": 1}

	assert.Equal(t, []FileRecord{{"/c", 99}, {"/a", 10}}, s.Top(2))
	assert.Len(t, s.Top(0), 4)
	assert.Equal(t, int64(120), s.TotalSize())
}

func TestSnapshotEqualAndClone(t *testing.T) {
	s := Snapshot{"/a": 1}
	c := s.Clone()
	c["/b"] = 2

	assert.False(t, s.Equal(c))
	assert.True(t, s.Equal(Snapshot{"/a": 1}))
	assert.Nil(t, Snapshot(nil).Clone())
}
