// Package history records completed publish cycles in a local SQLite
// database so earlier deployments can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultFileName is the history database created next to the build output.
const DefaultFileName = ".publish-history.db"

// Record is one completed publish cycle.
type Record struct {
	ID          int64             `json:"id"`
	CycleID     string            `json:"cycle_id"`
	Commit      string            `json:"commit,omitempty"`
	FinishedAt  time.Time         `json:"finished_at"`
	Uploaded    int               `json:"uploaded"`
	CacheHits   int               `json:"cache_hits"`
	LeftLocal   int               `json:"left_local"`
	DurationMS  int64             `json:"duration_ms"`
	ManifestSum string            `json:"manifest_sum,omitempty"`
	URLs        map[string]string `json:"urls,omitempty"`
}

// Store persists publish records in SQLite. Use ":memory:" for tests.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS publishes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		commit_sha TEXT,
		finished_at INTEGER NOT NULL,
		uploaded INTEGER NOT NULL,
		cache_hits INTEGER NOT NULL,
		left_local INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		manifest_sum TEXT,
		urls TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_cycle_id ON publishes(cycle_id);
	CREATE INDEX IF NOT EXISTS idx_finished_at ON publishes(finished_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores a completed publish cycle.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var urlsJSON []byte
	if r.URLs != nil {
		var err error
		urlsJSON, err = json.Marshal(r.URLs)
		if err != nil {
			return fmt.Errorf("marshal urls: %w", err)
		}
	}

	finished := r.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO publishes (cycle_id, commit_sha, finished_at, uploaded, cache_hits, left_local, duration_ms, manifest_sum, urls) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.CycleID, r.Commit, finished.Unix(), r.Uploaded, r.CacheHits, r.LeftLocal, r.DurationMS, r.ManifestSum, urlsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert publish record: %w", err)
	}
	return nil
}

// Recent returns the most recent publish records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cycle_id, commit_sha, finished_at, uploaded, cache_hits, left_local, duration_ms, manifest_sum, urls FROM publishes ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query publish records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByCycleID returns the records for one publish cycle.
func (s *Store) ByCycleID(ctx context.Context, cycleID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cycle_id, commit_sha, finished_at, uploaded, cache_hits, left_local, duration_ms, manifest_sum, urls FROM publishes WHERE cycle_id = ? ORDER BY id",
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query publish records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var finishedUnix int64
		var urlsJSON []byte

		err := rows.Scan(&r.ID, &r.CycleID, &r.Commit, &finishedUnix, &r.Uploaded, &r.CacheHits, &r.LeftLocal, &r.DurationMS, &r.ManifestSum, &urlsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan publish record: %w", err)
		}

		r.FinishedAt = time.Unix(finishedUnix, 0)
		if len(urlsJSON) > 0 {
			if err := json.Unmarshal(urlsJSON, &r.URLs); err != nil {
				return nil, fmt.Errorf("unmarshal urls: %w", err)
			}
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
