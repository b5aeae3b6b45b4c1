// Package schedule implements the recurring job core: job definitions,
// persistence, command execution, run recording and outcome notification.
package schedule

import (
	"strings"
	"time"

	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/recur"
)

// Subscriber is one notification recipient attached to a job.
type Subscriber struct {
	Username string
	FullName string
	Email    string
}

// Job is a recurring task definition.
//
// Exactly one command mode is populated: Command names an in-process
// command from the registry, ShellCommand is an external command line.
// Validate enforces this at the entry points; the runner assumes it holds.
type Job struct {
	ID        string
	Name      string
	Frequency recur.Frequency
	Params    string // raw recurrence parameter text, e.g. "byhour:6;byminute:40"

	Command      string // in-process command name
	ShellCommand string // external command line
	RunInShell   bool   // run ShellCommand through a shell interpreter
	Args         string // space separated; e.g. "arg1 option1=True"

	Disabled          bool
	NextRun           *time.Time
	LastRun           *time.Time
	Running           bool
	LastRunSuccessful bool

	InfoSubscribers  []Subscriber // notified on successful runs with output
	ErrorSubscribers []Subscriber // notified on every failed run

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the job definition at the entry points. A job with both
// or neither command mode set must never reach the runner.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return errors.Wrap(errors.ErrInvalidJob, "name is required")
	}
	hasCommand := strings.TrimSpace(j.Command) != ""
	hasShell := strings.TrimSpace(j.ShellCommand) != ""
	if hasCommand && hasShell {
		return errors.Wrap(errors.ErrInvalidJob, "both command and shell_command set")
	}
	if !hasCommand && !hasShell {
		return errors.Wrap(errors.ErrInvalidJob, "neither command nor shell_command set")
	}
	if _, err := recur.ParseParams(j.Params); err != nil {
		return errors.Wrap(errors.ErrInvalidJob, err.Error())
	}
	return nil
}

// ScheduleNext applies the save-time scheduling rule: a disabled job has
// no next run; an enabled job without one gets its first occurrence
// computed from the recurrence rule, anchored at the last run (defaulting
// to now).
func (j *Job) ScheduleNext(now time.Time) error {
	if j.Disabled {
		j.NextRun = nil
		return nil
	}
	if j.LastRun == nil {
		last := now
		j.LastRun = &last
	}
	if j.NextRun == nil {
		params, err := recur.ParseParams(j.Params)
		if err != nil {
			return err
		}
		if next, ok := recur.Next(recur.ParseFrequency(string(j.Frequency)), params, *j.LastRun); ok {
			j.NextRun = &next
		}
	}
	return nil
}

// TimeUntil returns a short human description of when the job runs next.
func (j *Job) TimeUntil(now time.Time) string {
	if j.Disabled {
		return "never (disabled)"
	}
	if j.NextRun == nil {
		return "never"
	}
	delta := j.NextRun.Sub(now)
	if delta <= 0 {
		return "due"
	}
	return delta.Round(time.Second).String()
}
