package cron

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS cron_jobs (
	id          TEXT PRIMARY KEY,
	expression  TEXT NOT NULL,
	command     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	next_run    TEXT NOT NULL,
	last_run    TEXT,
	last_status TEXT,
	last_output TEXT
);
CREATE INDEX IF NOT EXISTS idx_cron_jobs_next_run ON cron_jobs(next_run);

CREATE TABLE IF NOT EXISTS cron_executions (
	id         TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL,
	status     TEXT NOT NULL,
	started_at TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	output     TEXT
);
CREATE INDEX IF NOT EXISTS idx_cron_executions_job_id ON cron_executions(job_id, started_at);
`

// Store persists cron jobs and their execution history at
// <workspace>/cron/jobs.db, as a single sqlite table indexed on
// next_run plus a supplemental execution-history table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the sqlite database at path, applying the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cron: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cron: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Insert writes a new job record. Timestamps are stored as RFC 3339
// strings in UTC.
func (s *Store) Insert(job models.CronJob) error {
	_, err := s.db.Exec(
		`INSERT INTO cron_jobs (id, expression, command, created_at, next_run, last_run, last_status, last_output)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Expression, job.Command,
		job.CreatedAt.UTC().Format(time.RFC3339),
		job.NextRun.UTC().Format(time.RFC3339),
		nullableTime(job.LastRun), job.LastStatus, job.LastOutput,
	)
	if err != nil {
		return fmt.Errorf("cron: insert job: %w", err)
	}
	return nil
}

// List returns every job ordered by next_run ascending.
func (s *Store) List() ([]models.CronJob, error) {
	rows, err := s.db.Query(
		`SELECT id, expression, command, created_at, next_run, last_run, last_status, last_output
		 FROM cron_jobs ORDER BY next_run ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("cron: list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.CronJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Due returns every job whose next_run is <= now, ordered by next_run
// ascending, for the tick loop to execute.
func (s *Store) Due(now time.Time) ([]models.CronJob, error) {
	rows, err := s.db.Query(
		`SELECT id, expression, command, created_at, next_run, last_run, last_status, last_output
		 FROM cron_jobs WHERE next_run <= ? ORDER BY next_run ASC`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("cron: query due jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.CronJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Get returns a single job by id.
func (s *Store) Get(id string) (models.CronJob, bool, error) {
	row := s.db.QueryRow(
		`SELECT id, expression, command, created_at, next_run, last_run, last_status, last_output
		 FROM cron_jobs WHERE id = ?`, id,
	)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return models.CronJob{}, false, nil
	}
	if err != nil {
		return models.CronJob{}, false, fmt.Errorf("cron: get job: %w", err)
	}
	return job, true, nil
}

// Remove deletes a job by id; returns false if no such job existed.
func (s *Store) Remove(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM cron_jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("cron: remove job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cron: remove job: %w", err)
	}
	return n > 0, nil
}

// RecordRun updates last_run/last_status/last_output and the job's
// next_run after one firing, and appends an execution-history row.
func (s *Store) RecordRun(job models.CronJob, exec models.JobExecution) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cron: record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE cron_jobs SET next_run = ?, last_run = ?, last_status = ?, last_output = ? WHERE id = ?`,
		job.NextRun.UTC().Format(time.RFC3339),
		nullableTime(job.LastRun), job.LastStatus, job.LastOutput, job.ID,
	)
	if err != nil {
		return fmt.Errorf("cron: update job after run: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO cron_executions (id, job_id, status, started_at, duration_ns, output) VALUES (?, ?, ?, ?, ?, ?)`,
		exec.ID, exec.JobID, string(exec.Status), exec.StartedAt.UTC().Format(time.RFC3339), exec.Duration.Nanoseconds(), exec.Output,
	)
	if err != nil {
		return fmt.Errorf("cron: insert execution record: %w", err)
	}

	return tx.Commit()
}

// History returns execution records for a job, most recent first.
func (s *Store) History(jobID string, limit int) ([]models.JobExecution, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, job_id, status, started_at, duration_ns, output
		 FROM cron_executions WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`,
		jobID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("cron: list execution history: %w", err)
	}
	defer rows.Close()

	var out []models.JobExecution
	for rows.Next() {
		var e models.JobExecution
		var started string
		var durationNs int64
		var status string
		if err := rows.Scan(&e.ID, &e.JobID, &status, &started, &durationNs, &e.Output); err != nil {
			return nil, fmt.Errorf("cron: scan execution: %w", err)
		}
		e.Status = models.ExecutionStatus(status)
		e.Duration = time.Duration(durationNs)
		e.StartedAt, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("cron: parse execution timestamp: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (models.CronJob, error) {
	var job models.CronJob
	var createdAt, nextRun string
	var lastRun, lastStatus, lastOutput sql.NullString
	if err := r.Scan(&job.ID, &job.Expression, &job.Command, &createdAt, &nextRun, &lastRun, &lastStatus, &lastOutput); err != nil {
		return models.CronJob{}, err
	}
	var err error
	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.CronJob{}, fmt.Errorf("cron: parse created_at: %w", err)
	}
	job.NextRun, err = time.Parse(time.RFC3339, nextRun)
	if err != nil {
		return models.CronJob{}, fmt.Errorf("cron: parse next_run: %w", err)
	}
	if lastRun.Valid {
		t, err := time.Parse(time.RFC3339, lastRun.String)
		if err != nil {
			return models.CronJob{}, fmt.Errorf("cron: parse last_run: %w", err)
		}
		job.LastRun = &t
	}
	job.LastStatus = lastStatus.String
	job.LastOutput = lastOutput.String
	return job, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
