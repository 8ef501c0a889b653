// Package telemetry records run events in a local SQLite database so
// sessions can be inspected after the fact.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event is one recorded occurrence during a run.
type Event struct {
	ID        string
	Timestamp time.Time
	Agent     string
	Kind      string
	JobID     string
	Detail    string
}

// Event kinds.
const (
	KindSessionStart = "session_start"
	KindSessionEnd   = "session_end"
	KindNavigation   = "navigation"
	KindApplication  = "application"
	KindCaptcha      = "captcha"
	KindError        = "error"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	agent      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	job_id     TEXT,
	detail     TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
`

// Store wraps the events database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path with WAL and a
// busy timeout so the status server can read while agents write.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply telemetry schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one event, generating its id and timestamp.
func (s *Store) Record(ctx context.Context, agent, kind, jobID, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, timestamp, agent, kind, job_id, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UTC().Format(time.RFC3339Nano), agent, kind, jobID, detail)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, agent, kind, COALESCE(job_id, ''), COALESCE(detail, '')
		 FROM events ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ByKind returns up to limit events of one kind, newest first.
func (s *Store) ByKind(ctx context.Context, kind string, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, agent, kind, COALESCE(job_id, ''), COALESCE(detail, '')
		 FROM events WHERE kind = ? ORDER BY timestamp DESC LIMIT ?`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CountByKind returns event totals grouped by kind.
func (s *Store) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Agent, &e.Kind, &e.JobID, &e.Detail); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
