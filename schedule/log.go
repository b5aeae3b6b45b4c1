package schedule

import "time"

// Log is the immutable record of one job execution: captured output,
// timing and outcome. Created exactly once per run, after completion,
// and never mutated thereafter.
type Log struct {
	ID      string
	JobID   string
	RunDate time.Time
	EndDate *time.Time // nil until the run completed
	Stdout  string
	Stderr  string
	Success bool
}

// Duration returns the run duration. The second return value is false
// when no end time was recorded, in which case the duration is undefined.
func (l *Log) Duration() (time.Duration, bool) {
	if l.EndDate == nil {
		return 0, false
	}
	return l.EndDate.Sub(l.RunDate), true
}
