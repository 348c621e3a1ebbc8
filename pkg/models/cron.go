package models

import "time"

// CronJob is one persisted scheduled command.
type CronJob struct {
	ID         string     `json:"id"`
	Expression string     `json:"expression"`
	Command    string     `json:"command"`
	CreatedAt  time.Time  `json:"created_at"`
	NextRun    time.Time  `json:"next_run"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastStatus string     `json:"last_status,omitempty"` // "ok" | "error"
	LastOutput string     `json:"last_output,omitempty"`
}

// ExecutionStatus is the outcome of one cron job firing.
type ExecutionStatus string

const (
	ExecutionOK    ExecutionStatus = "ok"
	ExecutionError ExecutionStatus = "error"
)

// JobExecution records one historical firing of a CronJob, kept alongside
// the job's own last_run/last_status/last_output summary fields.
type JobExecution struct {
	ID        string          `json:"id"`
	JobID     string          `json:"job_id"`
	Status    ExecutionStatus `json:"status"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Output    string          `json:"output,omitempty"`
}
