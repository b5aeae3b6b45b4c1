package schedule

import (
	"context"
	"io"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrond/chrond/recur"
)

func newTestTicker(t *testing.T, cfg TickerConfig) (*Ticker, *Store, *LogStore) {
	t.Helper()
	db := createTestDB(t)
	store := NewStore(db)
	logs := NewLogStore(db)

	registry := NewCommandRegistry()
	registry.Register(CommandFunc{
		CommandName: "tick-test",
		Fn: func(ctx context.Context, args []string, opts map[string]string, stdout, stderr io.Writer) error {
			io.WriteString(stdout, "ran\n")
			return nil
		},
	})

	runner := NewRunner(
		store,
		NewCommandExecutor(registry),
		NewRecorder(logs),
		NewNotifier(nil, "", "", ""),
		zap.NewNop().Sugar(),
	)
	ticker := NewTicker(store, runner, cfg, zap.NewNop().Sugar())
	return ticker, store, logs
}

func TestCheckDueJobsRunsAndReschedules(t *testing.T) {
	ticker, store, logs := newTestTicker(t, DefaultTickerConfig())
	now := time.Now().UTC()

	due := &Job{Name: "due", Frequency: recur.Hourly, Command: "tick-test", NextRun: timePtr(now.Add(-time.Minute))}
	notDue := &Job{Name: "later", Frequency: recur.Hourly, Command: "tick-test", NextRun: timePtr(now.Add(time.Hour))}
	require.NoError(t, store.Save(due))
	require.NoError(t, store.Save(notDue))

	require.NoError(t, ticker.checkDueJobs(now))

	ran, err := logs.ListForJob(due.ID)
	require.NoError(t, err)
	require.Len(t, ran, 1)
	assert.True(t, ran[0].Success)

	skipped, err := logs.ListForJob(notDue.ID)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	// The due job advanced past now.
	saved, err := store.Load(due.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.NextRun)
	assert.True(t, saved.NextRun.After(now))
}

func TestCheckDueJobsEmptyStore(t *testing.T) {
	ticker, _, _ := newTestTicker(t, DefaultTickerConfig())
	assert.NoError(t, ticker.checkDueJobs(time.Now().UTC()))
}

func TestTickerStartStop(t *testing.T) {
	ticker, store, logs := newTestTicker(t, TickerConfig{Interval: 10 * time.Millisecond})

	job := &Job{Name: "looped", Frequency: recur.Hourly, Command: "tick-test", NextRun: timePtr(time.Now().UTC().Add(-time.Second))}
	require.NoError(t, store.Save(job))

	ticker.Start()
	time.Sleep(100 * time.Millisecond)
	ticker.Stop()

	list, err := logs.ListForJob(job.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	stats := ticker.Stats()
	assert.Greater(t, stats["ticks_since_start"].(int64), int64(0))
}
