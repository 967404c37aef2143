package report

import (
	"github.com/lakshaymaurya-felt/wintrack/internal/core"
	"github.com/lakshaymaurya-felt/wintrack/internal/snapshot"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
)

// DefaultTop is how many of the largest files the change view lists.
const DefaultTop = 20

// Kind tells which section of the change view a row belongs to.
type Kind int

const (
	KindTop Kind = iota
	KindDeleted
	KindNew
)

// Change labels.
const (
	ChangeNew     = "New"
	ChangeDeleted = "Deleted"
	NoSize        = "—"
)

// Row is one line of the change view.
type Row struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Known  bool   `json:"-"`
	Change string `json:"change,omitempty"`
	Kind   Kind   `json:"-"`
}

// SizeText renders the size column; deleted rows have none.
func (r Row) SizeText() string {
	if !r.Known {
		return NoSize
	}
	return core.FormatSize(r.Size)
}

// Rows builds the change view of a successful outcome: the topN largest
// files of the new snapshot annotated New or +<growth>, then every deleted
// path, then new files that did not make the top list. topN <= 0 means
// DefaultTop.
func Rows(out tracker.Outcome, topN int) []Row {
	if topN <= 0 {
		topN = DefaultTop
	}

	changes := make(map[string]string, len(out.Diff.New)+len(out.Diff.Grown))
	for _, rec := range out.Diff.New {
		changes[rec.Path] = ChangeNew
	}
	for _, g := range out.Diff.Grown {
		changes[g.Path] = core.FormatDelta(g.Delta)
	}

	top := out.Snapshot.Top(topN)
	inTop := make(map[string]struct{}, len(top))
	rows := make([]Row, 0, len(top)+len(out.Diff.Deleted))

	for _, rec := range top {
		inTop[rec.Path] = struct{}{}
		rows = append(rows, Row{Path: rec.Path, Size: rec.Size, Known: true, Change: changes[rec.Path], Kind: KindTop})
	}
	for _, path := range out.Diff.Deleted {
		rows = append(rows, Row{Path: path, Change: ChangeDeleted, Kind: KindDeleted})
	}
	for _, rec := range out.Diff.New {
		if _, ok := inTop[rec.Path]; ok {
			continue
		}
		rows = append(rows, Row{Path: rec.Path, Size: rec.Size, Known: true, Change: ChangeNew, Kind: KindNew})
	}
	return rows
}

// Document is the machine-readable form of an outcome.
type Document struct {
	ID          string                `json:"id"`
	Root        string                `json:"root"`
	Filter      string                `json:"filter"`
	StartedAt   string                `json:"started_at"`
	FinishedAt  string                `json:"finished_at"`
	HadBaseline bool                  `json:"had_baseline"`
	Files       int                   `json:"files"`
	TotalBytes  int64                 `json:"total_bytes"`
	Summary     string                `json:"summary"`
	Top         []snapshot.FileRecord `json:"top"`
	New         []snapshot.FileRecord `json:"new"`
	Grown       []snapshot.Growth     `json:"grown"`
	Deleted     []string              `json:"deleted"`
	HistoryPath string                `json:"history_path,omitempty"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// NewDocument flattens an outcome for JSON or toon output. Empty lists
// are emitted as [] rather than null.
func NewDocument(out tracker.Outcome, topN int) Document {
	if topN <= 0 {
		topN = DefaultTop
	}
	doc := Document{
		ID:          out.ID,
		Root:        out.Root,
		Filter:      out.Filter.String(),
		StartedAt:   out.StartedAt.Format(timeLayout),
		FinishedAt:  out.FinishedAt.Format(timeLayout),
		HadBaseline: out.HadBaseline,
		Files:       out.Snapshot.Len(),
		TotalBytes:  out.Snapshot.TotalSize(),
		Summary:     out.Summary(),
		Top:         out.Snapshot.Top(topN),
		New:         out.Diff.New,
		Grown:       out.Diff.Grown,
		Deleted:     out.Diff.Deleted,
		HistoryPath: out.HistoryPath,
	}
	if doc.Top == nil {
		doc.Top = []snapshot.FileRecord{}
	}
	if doc.New == nil {
		doc.New = []snapshot.FileRecord{}
	}
	if doc.Grown == nil {
		doc.Grown = []snapshot.Growth{}
	}
	if doc.Deleted == nil {
		doc.Deleted = []string{}
	}
	return doc
}
