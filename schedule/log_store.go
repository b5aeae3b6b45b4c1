package schedule

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chrond/chrond/errors"
)

// LogStore handles persistence of job run logs.
type LogStore struct {
	db *sql.DB
}

// NewLogStore creates a new run log store.
func NewLogStore(db *sql.DB) *LogStore {
	return &LogStore{db: db}
}

// Create persists a run log. A log without an ID gets one assigned.
func (s *LogStore) Create(log *Log) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	var endDate interface{}
	if log.EndDate != nil {
		endDate = log.EndDate.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(`
		INSERT INTO run_logs (id, job_id, run_date, end_date, stdout, stderr, success)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID,
		log.JobID,
		log.RunDate.UTC().Format(time.RFC3339),
		endDate,
		log.Stdout,
		log.Stderr,
		log.Success,
	)
	return errors.Wrap(err, "failed to create run log")
}

// Get retrieves a run log by ID.
func (s *LogStore) Get(id string) (*Log, error) {
	row := s.db.QueryRow(`
		SELECT id, job_id, run_date, end_date, stdout, stderr, success
		FROM run_logs
		WHERE id = ?
	`, id)

	log, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("run log %s", id)
		}
		return nil, errors.Wrap(err, "failed to get run log")
	}
	return log, nil
}

// ListForJob returns a job's run logs, most recent first.
func (s *LogStore) ListForJob(jobID string) ([]*Log, error) {
	rows, err := s.db.Query(`
		SELECT id, job_id, run_date, end_date, stdout, stderr, success
		FROM run_logs
		WHERE job_id = ?
		ORDER BY run_date DESC
	`, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list run logs")
	}
	defer rows.Close()

	var logs []*Log
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan run log")
		}
		logs = append(logs, log)
	}
	return logs, errors.Wrap(rows.Err(), "iterate run logs")
}

// DeleteOlderThan removes run logs whose run date is at or before the
// cutoff and returns how many were deleted.
func (s *LogStore) DeleteOlderThan(cutoff time.Time) (int, error) {
	result, err := s.db.Exec(`
		DELETE FROM run_logs WHERE run_date <= ?
	`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete old run logs")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rows affected")
	}
	return int(rows), nil
}

func scanLog(row rowScanner) (*Log, error) {
	var log Log
	var runDate string
	var endDate sql.NullString

	err := row.Scan(
		&log.ID,
		&log.JobID,
		&runDate,
		&endDate,
		&log.Stdout,
		&log.Stderr,
		&log.Success,
	)
	if err != nil {
		return nil, err
	}

	log.RunDate, err = time.Parse(time.RFC3339, runDate)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse run_date for log %s", log.ID)
	}
	if endDate.Valid {
		t, err := time.Parse(time.RFC3339, endDate.String)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse end_date for log %s", log.ID)
		}
		log.EndDate = &t
	}

	return &log, nil
}
