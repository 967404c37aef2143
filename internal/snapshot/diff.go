package snapshot

import (
	"fmt"
	"sort"
)

// DefaultGrowthThreshold is the minimum growth, in bytes, for a file to be
// reported as grown. A file must grow by strictly more than this.
const DefaultGrowthThreshold int64 = 10 * 1024 * 1024

// Growth records how much a file grew between two snapshots.
type Growth struct {
	Path  string `json:"path"`
	Delta int64  `json:"delta"`
}

// DiffResult holds the three disjoint change sets between two snapshots.
// Each slice is sorted by path.
type DiffResult struct {
	New     []FileRecord `json:"new"`
	Grown   []Growth     `json:"grown"`
	Deleted []string     `json:"deleted"`
}

// Empty reports whether no changes were found.
func (r DiffResult) Empty() bool {
	return len(r.New) == 0 && len(r.Grown) == 0 && len(r.Deleted) == 0
}

// Counts returns the sizes of the new, grown, and deleted sets.
func (r DiffResult) Counts() (newCount, grownCount, deletedCount int) {
	return len(r.New), len(r.Grown), len(r.Deleted)
}

// Summary renders the short notification line, e.g. "3 new, 1 grew, 0 deleted".
func (r DiffResult) Summary() string {
	return fmt.Sprintf("%d new, %d grew, %d deleted", len(r.New), len(r.Grown), len(r.Deleted))
}

// Diff compares the previous snapshot against the current one.
//
// A nil old snapshot means there is no baseline yet; the result is empty on
// all three sets. A negative threshold is treated as zero.
func Diff(old, cur Snapshot, threshold int64) DiffResult {
	var result DiffResult
	if old == nil {
		return result
	}
	if threshold < 0 {
		threshold = 0
	}

	for path, size := range cur {
		prev, ok := old[path]
		if !ok {
			result.New = append(result.New, FileRecord{Path: path, Size: size})
			continue
		}
		if delta := size - prev; delta > threshold {
			result.Grown = append(result.Grown, Growth{Path: path, Delta: delta})
		}
	}

	for path := range old {
		if _, ok := cur[path]; !ok {
			result.Deleted = append(result.Deleted, path)
		}
	}

	sort.Slice(result.New, func(i, j int) bool { return result.New[i].Path < result.New[j].Path })
	sort.Slice(result.Grown, func(i, j int) bool { return result.Grown[i].Path < result.Grown[j].Path })
	sort.Strings(result.Deleted)

	return result
}

// Differ binds a growth threshold so callers can pass the policy around.
type Differ struct {
	Threshold int64
}

// NewDiffer returns a Differ using the given threshold.
func NewDiffer(threshold int64) Differ {
	return Differ{Threshold: threshold}
}

// Diff runs Diff with the bound threshold.
func (d Differ) Diff(old, cur Snapshot) DiffResult {
	return Diff(old, cur, d.Threshold)
}
