package models

import "time"

// HealthStatus is one component's current state in the health registry.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthError HealthStatus = "error"
)

// HealthEntry is the supervisor's per-component record.
type HealthEntry struct {
	Component     string       `json:"-"`
	Status        HealthStatus `json:"status"`
	LastOK        time.Time    `json:"last_ok"`
	LastError     string       `json:"last_error,omitempty"`
	RestartCount  int          `json:"restart_count"`
}

// DaemonState is the JSON snapshot written atomically by the state-writer.
type DaemonState struct {
	UpdatedAt     time.Time              `json:"updated_at"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Components    map[string]HealthEntry `json:"components"`
	WrittenAt     time.Time              `json:"written_at"`
}
