package schedule

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/recur"
)

func TestCreateAndGetLog(t *testing.T) {
	db := createTestDB(t)
	store := NewStore(db)
	logs := NewLogStore(db)

	job := &Job{Name: "logged", Frequency: recur.Hourly, Command: "report"}
	require.NoError(t, store.Save(job))

	runDate := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	endDate := runDate.Add(3 * time.Second)
	log := &Log{
		JobID:   job.ID,
		RunDate: runDate,
		EndDate: timePtr(endDate),
		Stdout:  "12 rows processed\n",
		Stderr:  "",
		Success: true,
	}
	require.NoError(t, logs.Create(log))
	require.NotEmpty(t, log.ID)

	retrieved, err := logs.Get(log.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, retrieved.JobID)
	assert.True(t, retrieved.RunDate.Equal(runDate))
	require.NotNil(t, retrieved.EndDate)
	assert.True(t, retrieved.EndDate.Equal(endDate))
	assert.Equal(t, "12 rows processed\n", retrieved.Stdout)
	assert.True(t, retrieved.Success)

	d, ok := retrieved.Duration()
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, d)
}

func TestGetMissingLog(t *testing.T) {
	db := createTestDB(t)
	logs := NewLogStore(db)

	_, err := logs.Get("no-such-id")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListForJob(t *testing.T) {
	db := createTestDB(t)
	store := NewStore(db)
	logs := NewLogStore(db)

	job := &Job{Name: "busy", Frequency: recur.Hourly, Command: "report"}
	require.NoError(t, store.Save(job))

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, logs.Create(&Log{
			JobID:   job.ID,
			RunDate: base.Add(time.Duration(i) * time.Hour),
			Success: true,
		}))
	}

	list, err := logs.ListForJob(job.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Most recent first.
	assert.True(t, list[0].RunDate.After(list[1].RunDate))
	assert.True(t, list[1].RunDate.After(list[2].RunDate))
}

func TestDeleteOlderThan(t *testing.T) {
	db := createTestDB(t)
	store := NewStore(db)
	logs := NewLogStore(db)

	job := &Job{Name: "retained", Frequency: recur.Hourly, Command: "report"}
	require.NoError(t, store.Save(job))

	now := time.Now().UTC().Truncate(time.Second)
	cutoff := now.Add(-7 * 24 * time.Hour)

	// One well past the cutoff, one exactly at it, one recent.
	ages := []time.Time{now.Add(-30 * 24 * time.Hour), cutoff, now.Add(-time.Hour)}
	for _, runDate := range ages {
		require.NoError(t, logs.Create(&Log{JobID: job.ID, RunDate: runDate, Success: true}))
	}

	// The log dated exactly at the cutoff is deleted too.
	deleted, err := logs.DeleteOlderThan(cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := logs.ListForJob(job.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.True(t, remaining[0].RunDate.After(cutoff))
}
