package snapshot

import (
	"sort"
)

// Snapshot maps absolute file paths to their size in bytes, as observed by
// one tree walk. A nil Snapshot means "no snapshot" (for example, the first
// run before any baseline has been saved); an empty non-nil Snapshot is a
// real baseline that happened to contain no files.
type Snapshot map[string]int64

// FileRecord is a single path/size pair.
type FileRecord struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Len returns the number of files in the snapshot.
func (s Snapshot) Len() int {
	return len(s)
}

// TotalSize returns the sum of all file sizes.
func (s Snapshot) TotalSize() int64 {
	var total int64
	for _, size := range s {
		total += size
	}
	return total
}

// Clone returns an independent copy. Cloning nil yields nil.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for path, size := range s {
		out[path] = size
	}
	return out
}

// Equal reports whether both snapshots hold the same path/size pairs.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for path, size := range s {
		otherSize, ok := other[path]
		if !ok || otherSize != size {
			return false
		}
	}
	return true
}

// Records returns the snapshot as records sorted by size descending, ties
// broken by path so the order is deterministic.
func (s Snapshot) Records() []FileRecord {
	records := make([]FileRecord, 0, len(s))
	for path, size := range s {
		records = append(records, FileRecord{Path: path, Size: size})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Size != records[j].Size {
			return records[i].Size > records[j].Size
		}
		return records[i].Path < records[j].Path
	})
	return records
}

// Top returns at most n of the largest files. n <= 0 returns all of them.
func (s Snapshot) Top(n int) []FileRecord {
	records := s.Records()
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records
}
