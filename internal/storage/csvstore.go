// Package storage persists application records as CSV files under the
// data directory, one file per run artifact.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

var applicationHeader = []string{
	"id", "job_id", "job_title", "company", "url", "status", "reason", "created_at", "updated_at",
}

// CSVStore appends application records to a CSV file, writing the header
// on first use. Safe for concurrent use.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore creates a store writing to dir/name. When timestamped is
// true the file name carries the start time so successive runs never
// collide.
func NewCSVStore(dir, name string, timestamped bool) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	if timestamped {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s_%s%s", name[:len(name)-len(ext)], time.Now().Format("20060102_150405"), ext)
	}
	return &CSVStore{path: filepath.Join(dir, name)}, nil
}

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// Append writes one record, creating the file with a header row first if
// needed.
func (s *CSVStore) Append(rec models.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(applicationHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	row := []string{
		rec.ID, rec.JobID, rec.JobTitle, rec.Company, rec.URL,
		rec.Status, rec.Reason,
		rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Load reads every record back out. A missing file yields an empty slice.
func (s *CSVStore) Load() ([]models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var out []models.ApplicationRecord
	for i, row := range rows {
		if i == 0 || len(row) < len(applicationHeader) {
			continue
		}
		created, _ := time.Parse(time.RFC3339, row[7])
		updated, _ := time.Parse(time.RFC3339, row[8])
		out = append(out, models.ApplicationRecord{
			ID: row[0], JobID: row[1], JobTitle: row[2], Company: row[3],
			URL: row[4], Status: row[5], Reason: row[6],
			CreatedAt: created, UpdatedAt: updated,
		})
	}
	return out, nil
}

// HasApplied reports whether a record for the job already exists with a
// terminal status, so the same posting is never applied to twice.
func (s *CSVStore) HasApplied(jobID string) (bool, error) {
	recs, err := s.Load()
	if err != nil {
		return false, err
	}
	for _, rec := range recs {
		if rec.JobID == jobID && rec.Status != models.StatusDraft {
			return true, nil
		}
	}
	return false, nil
}
