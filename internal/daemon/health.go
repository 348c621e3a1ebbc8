package daemon

import (
	"sync"
	"time"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// Registry is the supervisor's shared health table: one entry per
// managed component, updated as each component starts, fails, and
// restarts.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]models.HealthEntry
	startedAt time.Time
	now       func() time.Time
}

// NewRegistry creates an empty health registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[string]models.HealthEntry),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// MarkOK records component as healthy, preserving its restart count.
func (r *Registry) MarkOK(component string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[component]
	e.Component = component
	e.Status = models.HealthOK
	e.LastOK = r.now()
	e.LastError = ""
	r.entries[component] = e
}

// MarkError records component as failed with reason, preserving its
// restart count.
func (r *Registry) MarkError(component, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[component]
	e.Component = component
	e.Status = models.HealthError
	e.LastError = reason
	r.entries[component] = e
}

// IncrementRestart bumps component's restart counter.
func (r *Registry) IncrementRestart(component string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[component]
	e.Component = component
	e.RestartCount++
	r.entries[component] = e
}

// Snapshot returns the full health state as the JSON-serializable
// DaemonState the state-writer flushes to disk.
func (r *Registry) Snapshot() models.DaemonState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	components := make(map[string]models.HealthEntry, len(r.entries))
	for k, v := range r.entries {
		components[k] = v
	}
	now := r.now()
	return models.DaemonState{
		UpdatedAt:     now,
		UptimeSeconds: now.Sub(r.startedAt).Seconds(),
		Components:    components,
		WrittenAt:     now,
	}
}
