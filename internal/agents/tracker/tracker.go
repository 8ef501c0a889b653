// Package tracker appends a CSV activity log of everything the agents
// do, one row per activity, for audit and resume-after-crash.
package tracker

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var activityHeader = []string{
	"row_id", "timestamp", "agent_name", "job_id", "type", "details", "status",
}

// Activity types.
const (
	TypeNavigation  = "navigation"
	TypeLogin       = "login"
	TypeSearch      = "search"
	TypeApplication = "application"
	TypeCaptcha     = "captcha"
	TypeError       = "error"
)

// Activity statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Activity is one logged row.
type Activity struct {
	RowID     string
	Timestamp time.Time
	Agent     string
	JobID     string
	Type      string
	Details   string
	Status    string
}

// Tracker writes activities to a CSV file, rotating it with a timestamp
// suffix once it grows past maxSize bytes. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	logger  *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMaxSize overrides the rotation threshold.
func WithMaxSize(bytes int64) Option {
	return func(t *Tracker) { t.maxSize = bytes }
}

// New creates a tracker writing to path.
func New(path string, logger *slog.Logger, opts ...Option) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tracker dir: %w", err)
	}
	t := &Tracker{path: path, maxSize: 5 << 20, logger: logger}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Log records one activity, allocating its row id and timestamp.
func (t *Tracker) Log(agent, jobID, activityType, details, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rotateIfNeeded(); err != nil {
		return err
	}

	writeHeader := false
	if _, err := os.Stat(t.path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	act := Activity{
		RowID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Agent:     agent,
		JobID:     jobID,
		Type:      activityType,
		Details:   details,
		Status:    status,
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(activityHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	row := []string{
		act.RowID, act.Timestamp.Format(time.RFC3339), act.Agent,
		act.JobID, act.Type, act.Details, act.Status,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write activity: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	t.logger.Debug("activity logged",
		"agent", act.Agent, "type", act.Type, "job_id", act.JobID, "status", act.Status)
	return nil
}

// Load reads every activity from the current (unrotated) file.
func (t *Tracker) Load() ([]Activity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	var out []Activity
	for i, row := range rows {
		if i == 0 || len(row) < len(activityHeader) {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, row[1])
		out = append(out, Activity{
			RowID: row[0], Timestamp: ts, Agent: row[2],
			JobID: row[3], Type: row[4], Details: row[5], Status: row[6],
		})
	}
	return out, nil
}

// rotateIfNeeded renames the file with a timestamp suffix once it passes
// the size threshold. The next Log call starts a fresh file.
func (t *Tracker) rotateIfNeeded() error {
	info, err := os.Stat(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat activity log: %w", err)
	}
	if info.Size() < t.maxSize {
		return nil
	}

	ext := filepath.Ext(t.path)
	rotated := fmt.Sprintf("%s_%s%s",
		t.path[:len(t.path)-len(ext)], time.Now().Format("20060102_150405"), ext)
	if err := os.Rename(t.path, rotated); err != nil {
		return fmt.Errorf("failed to rotate activity log: %w", err)
	}
	t.logger.Info("activity log rotated", "to", rotated)
	return nil
}
