package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/recur"
)

// Runner coordinates one full job run: the concurrency guard, execution,
// schedule advancement, run recording, and notification.
type Runner struct {
	store    *Store
	executor Executor
	recorder *Recorder
	notifier *Notifier
	logger   *zap.SugaredLogger
}

// NewRunner wires a runner from its collaborators.
func NewRunner(store *Store, executor Executor, recorder *Recorder, notifier *Notifier, logger *zap.SugaredLogger) *Runner {
	return &Runner{
		store:    store,
		executor: executor,
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
	}
}

// Run executes a job once. With save set, the job's last run and next run
// are advanced; without it the run still executes and is logged, but the
// schedule is left untouched.
//
// Execution failures are captured in the run log, not returned. The only
// error a caller sees is a notification delivery failure.
func (r *Runner) Run(ctx context.Context, job *Job, save bool) error {
	if err := job.Validate(); err != nil {
		return err
	}

	runDate := time.Now().UTC()

	// Mark the job running before execution so a concurrent tick skips it.
	if err := r.store.SetRunning(job.ID, true); err != nil {
		if !errors.IsNotFoundError(err) {
			r.logger.Warnw("Failed to mark job running", "job", job.Name, "error", err)
		}
	}

	r.logger.Infow("Running job", "job", job.Name, "save", save)
	result := r.executor.Execute(ctx, job)
	endDate := time.Now().UTC()

	// Reload so concurrent edits to the definition are not clobbered by
	// our bookkeeping write. On failure fall back to what we hold.
	current, err := r.store.Load(job.ID)
	if err != nil {
		r.logger.Warnw("Failed to reload job after run", "job", job.Name, "error", err)
		current = job
	}

	current.Running = false
	current.LastRunSuccessful = result.Success
	if save {
		lastRun := runDate
		current.LastRun = &lastRun
		current.NextRun = nil

		params, err := recur.ParseParams(current.Params)
		if err != nil {
			r.logger.Warnw("Job has invalid recurrence params, leaving it unscheduled",
				"job", current.Name, "params", current.Params, "error", err)
		} else if next, ok := recur.Next(current.Frequency, params, runDate); ok {
			current.NextRun = &next
		}
	}
	if err := r.store.Save(current); err != nil {
		r.logger.Errorw("Failed to save job after run", "job", current.Name, "error", err)
	}

	log, err := r.recorder.Record(current, runDate, endDate, result)
	if err != nil {
		r.logger.Errorw("Failed to record run", "job", current.Name, "error", err)
		end := endDate
		log = &Log{
			JobID:   current.ID,
			RunDate: runDate,
			EndDate: &end,
			Stdout:  result.Stdout,
			Stderr:  result.Stderr,
			Success: result.Success,
		}
	}

	if result.Success {
		r.logger.Infow("Job completed", "job", current.Name, "duration", endDate.Sub(runDate))
	} else {
		r.logger.Warnw("Job failed", "job", current.Name, "duration", endDate.Sub(runDate))
	}

	return r.notifier.Notify(current, log)
}
