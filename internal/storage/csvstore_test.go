package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

func sampleRecord(jobID, status string) models.ApplicationRecord {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	return models.ApplicationRecord{
		ID:        "rec-" + jobID,
		JobID:     jobID,
		JobTitle:  "Backend Engineer",
		Company:   "Acme",
		URL:       "https://www.linkedin.com/jobs/view/" + jobID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCSVStoreAppendAndLoad(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), "applications.csv", false)
	require.NoError(t, err)

	require.NoError(t, store.Append(sampleRecord("101", models.StatusApplied)))
	require.NoError(t, store.Append(sampleRecord("102", models.StatusSkipped)))

	recs, err := store.Load()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "101", recs[0].JobID)
	assert.Equal(t, models.StatusSkipped, recs[1].Status)
	assert.Equal(t, 2026, recs[0].CreatedAt.Year())

	// Header written exactly once.
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "job_title"))
}

func TestCSVStoreLoadMissingFile(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), "applications.csv", false)
	require.NoError(t, err)

	recs, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCSVStoreHasApplied(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), "applications.csv", false)
	require.NoError(t, err)

	require.NoError(t, store.Append(sampleRecord("201", models.StatusApplied)))
	require.NoError(t, store.Append(sampleRecord("202", models.StatusDraft)))

	applied, err := store.HasApplied("201")
	require.NoError(t, err)
	assert.True(t, applied)

	// Drafts do not count as applied.
	applied, err = store.HasApplied("202")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = store.HasApplied("999")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestCSVStoreTimestampedName(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), "applications.csv", true)
	require.NoError(t, err)
	assert.Regexp(t, `applications_\d{8}_\d{6}\.csv$`, store.Path())
}
