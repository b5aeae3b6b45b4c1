package schedule

import (
	"time"

	"github.com/chrond/chrond/errors"
)

// Recorder persists one run log per execution attempt.
type Recorder struct {
	logs *LogStore
}

// NewRecorder creates a recorder over the given log store.
func NewRecorder(logs *LogStore) *Recorder {
	return &Recorder{logs: logs}
}

// Record writes a run log for an execution. Every attempt is recorded,
// successful or not.
func (r *Recorder) Record(job *Job, runDate, endDate time.Time, result Result) (*Log, error) {
	end := endDate
	log := &Log{
		JobID:   job.ID,
		RunDate: runDate,
		EndDate: &end,
		Stdout:  result.Stdout,
		Stderr:  result.Stderr,
		Success: result.Success,
	}
	if err := r.logs.Create(log); err != nil {
		return nil, errors.Wrapf(err, "failed to record run for job %s", job.ID)
	}
	return log, nil
}
