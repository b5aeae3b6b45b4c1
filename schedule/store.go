package schedule

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/recur"
)

// DefaultDueLimit bounds one due-selection batch so a backlog of overdue
// jobs cannot monopolize a tick.
const DefaultDueLimit = 100

// Store handles persistence of job definitions.
type Store struct {
	db *sql.DB

	// DueLimit caps the number of jobs returned by one Due call.
	DueLimit int
}

// NewStore creates a new job store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, DueLimit: DefaultDueLimit}
}

const jobColumns = `id, name, frequency, params, command, shell_command, run_in_shell,
	       args, disabled, next_run, last_run, running, last_run_successful,
	       created_at, updated_at`

// Save upserts a job and replaces its subscriber sets. A job without an ID
// gets one assigned.
func (s *Store) Save(job *Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	var nextRun, lastRun interface{}
	if job.NextRun != nil {
		nextRun = job.NextRun.UTC().Format(time.RFC3339)
	}
	if job.LastRun != nil {
		lastRun = job.LastRun.UTC().Format(time.RFC3339)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			frequency = excluded.frequency,
			params = excluded.params,
			command = excluded.command,
			shell_command = excluded.shell_command,
			run_in_shell = excluded.run_in_shell,
			args = excluded.args,
			disabled = excluded.disabled,
			next_run = excluded.next_run,
			last_run = excluded.last_run,
			running = excluded.running,
			last_run_successful = excluded.last_run_successful,
			updated_at = excluded.updated_at
	`,
		job.ID,
		job.Name,
		string(job.Frequency),
		job.Params,
		job.Command,
		job.ShellCommand,
		job.RunInShell,
		job.Args,
		job.Disabled,
		nextRun,
		lastRun,
		job.Running,
		job.LastRunSuccessful,
		job.CreatedAt.Format(time.RFC3339),
		job.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrap(err, "failed to save job")
	}

	// Subscriber sets are replaced wholesale; they are small.
	if _, err := tx.Exec(`DELETE FROM job_subscribers WHERE job_id = ?`, job.ID); err != nil {
		return errors.Wrap(err, "failed to clear subscribers")
	}
	for kind, subscribers := range map[string][]Subscriber{
		"info":  job.InfoSubscribers,
		"error": job.ErrorSubscribers,
	} {
		for _, sub := range subscribers {
			_, err := tx.Exec(`
				INSERT INTO job_subscribers (job_id, kind, username, full_name, email)
				VALUES (?, ?, ?, ?, ?)
			`, job.ID, kind, sub.Username, sub.FullName, sub.Email)
			if err != nil {
				return errors.Wrapf(err, "failed to save %s subscriber %s", kind, sub.Email)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "commit save")
}

// Load retrieves a job by ID, including its subscriber sets.
func (s *Store) Load(id string) (*Job, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("job %s", id)
		}
		return nil, errors.Wrap(err, "failed to load job")
	}

	if err := s.loadSubscribers(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Due returns jobs waiting to be run: not disabled, not already running,
// with a next run at or before now. Ordered by next_run so the most
// overdue jobs come first; batch-limited by DueLimit.
func (s *Store) Due(now time.Time) ([]*Job, error) {
	limit := s.DueLimit
	if limit <= 0 {
		limit = DefaultDueLimit
	}

	rows, err := s.db.Query(`
		SELECT `+jobColumns+`
		FROM jobs
		WHERE disabled = 0 AND running = 0
		  AND next_run IS NOT NULL AND next_run <= ?
		ORDER BY next_run ASC
		LIMIT ?
	`, now.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query due jobs")
	}
	defer rows.Close()

	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if err := s.loadSubscribers(job); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// NextScheduled returns the enabled job with the earliest next run, or nil
// when nothing is scheduled. Used for the scheduler countdown log line.
func (s *Store) NextScheduled() (*Job, error) {
	row := s.db.QueryRow(`
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE disabled = 0 AND next_run IS NOT NULL
		ORDER BY next_run ASC
		LIMIT 1
	`)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get next scheduled job")
	}
	return job, nil
}

// List returns all jobs, disabled last, then by next run. Subscribers are
// not loaded; this feeds list displays only.
func (s *Store) List() ([]*Job, error) {
	rows, err := s.db.Query(`
		SELECT ` + jobColumns + `
		FROM jobs
		ORDER BY disabled ASC, next_run ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()

	return collectJobs(rows)
}

// SetRunning persists just the running flag. This is the concurrency
// guard write; it is deliberately narrow so it can happen before the
// (possibly long) execution without touching other fields.
func (s *Store) SetRunning(id string, running bool) error {
	result, err := s.db.Exec(`
		UPDATE jobs
		SET running = ?, updated_at = ?
		WHERE id = ?
	`, running, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return errors.Wrap(err, "failed to update running flag")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.NewNotFoundError("job %s", id)
	}
	return nil
}

// Delete removes a job and, via cascade, its logs and subscribers.
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete job")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.NewNotFoundError("job %s", id)
	}
	return nil
}

func (s *Store) loadSubscribers(job *Job) error {
	rows, err := s.db.Query(`
		SELECT kind, username, full_name, email
		FROM job_subscribers
		WHERE job_id = ?
		ORDER BY kind, email
	`, job.ID)
	if err != nil {
		return errors.Wrap(err, "failed to load subscribers")
	}
	defer rows.Close()

	job.InfoSubscribers = nil
	job.ErrorSubscribers = nil
	for rows.Next() {
		var kind string
		var sub Subscriber
		if err := rows.Scan(&kind, &sub.Username, &sub.FullName, &sub.Email); err != nil {
			return errors.Wrap(err, "failed to scan subscriber")
		}
		switch kind {
		case "info":
			job.InfoSubscribers = append(job.InfoSubscribers, sub)
		case "error":
			job.ErrorSubscribers = append(job.ErrorSubscribers, sub)
		}
	}
	return errors.Wrap(rows.Err(), "iterate subscribers")
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var frequency, createdAt, updatedAt string
	var nextRun, lastRun sql.NullString

	err := row.Scan(
		&job.ID,
		&job.Name,
		&frequency,
		&job.Params,
		&job.Command,
		&job.ShellCommand,
		&job.RunInShell,
		&job.Args,
		&job.Disabled,
		&nextRun,
		&lastRun,
		&job.Running,
		&job.LastRunSuccessful,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Frequency = recur.Frequency(frequency)

	// Parse timestamps; failure indicates data corruption or schema drift.
	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse created_at for job %s", job.ID)
	}
	job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse updated_at for job %s", job.ID)
	}
	if nextRun.Valid {
		t, err := time.Parse(time.RFC3339, nextRun.String)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse next_run for job %s", job.ID)
		}
		job.NextRun = &t
	}
	if lastRun.Valid {
		t, err := time.Parse(time.RFC3339, lastRun.String)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse last_run for job %s", job.ID)
		}
		job.LastRun = &t
	}

	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, job)
	}
	return jobs, errors.Wrap(rows.Err(), "iterate jobs")
}
