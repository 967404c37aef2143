package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry summarizes one completed scan.
type Entry struct {
	ID           string    `json:"id"`
	Root         string    `json:"root"`
	Filter       string    `json:"filter"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	FileCount    int       `json:"file_count"`
	TotalBytes   int64     `json:"total_bytes"`
	NewCount     int       `json:"new_count"`
	GrownCount   int       `json:"grown_count"`
	DeletedCount int       `json:"deleted_count"`
	HadBaseline  bool      `json:"had_baseline"`
	HistoryFile  string    `json:"history_file"`
}

// Catalog indexes completed scans in a SQLite database next to the
// snapshot files. The JSON history stays the source of truth.
type Catalog struct {
	db *sql.DB
}

// Open initializes (or reuses) a catalog database at path.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Catalog{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database resources.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Catalog) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS scans (
        id TEXT PRIMARY KEY,
        root TEXT NOT NULL,
        filter TEXT NOT NULL,
        started_at INTEGER NOT NULL,
        finished_at INTEGER NOT NULL,
        file_count INTEGER NOT NULL,
        total_bytes INTEGER NOT NULL,
        new_count INTEGER NOT NULL,
        grown_count INTEGER NOT NULL,
        deleted_count INTEGER NOT NULL,
        had_baseline INTEGER NOT NULL,
        history_file TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_finished ON scans(finished_at);
`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Record inserts a scan summary.
func (c *Catalog) Record(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO scans(id, root, filter, started_at, finished_at, file_count, total_bytes,
        new_count, grown_count, deleted_count, had_baseline, history_file)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.Root, e.Filter, e.StartedAt.UnixNano(), e.FinishedAt.UnixNano(), e.FileCount, e.TotalBytes,
		e.NewCount, e.GrownCount, e.DeletedCount, boolToInt(e.HadBaseline), e.HistoryFile)
	if err != nil {
		return fmt.Errorf("record scan %s: %w", e.ID, err)
	}
	return nil
}

// List returns the most recent scans first. limit <= 0 returns all.
func (c *Catalog) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, root, filter, started_at, finished_at, file_count, total_bytes,
        new_count, grown_count, deleted_count, had_baseline, history_file
FROM scans ORDER BY finished_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			started     int64
			finished    int64
			hadBaseline int
		)
		if scanErr := rows.Scan(&e.ID, &e.Root, &e.Filter, &started, &finished, &e.FileCount, &e.TotalBytes,
			&e.NewCount, &e.GrownCount, &e.DeletedCount, &hadBaseline, &e.HistoryFile); scanErr != nil {
			return nil, fmt.Errorf("scan row: %w", scanErr)
		}
		e.StartedAt = time.Unix(0, started)
		e.FinishedAt = time.Unix(0, finished)
		e.HadBaseline = hadBaseline != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
