package cron

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// Scheduler runs the cron tick loop: every tick it queries the store for
// due jobs, runs each as a shell command, and reschedules from the
// completion time rather than the original firing time, so a period of
// downtime never produces a catch-up storm.
type Scheduler struct {
	store        *Store
	logger       *slog.Logger
	now          func() time.Time
	tickInterval time.Duration

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTickInterval overrides the tick loop's polling interval; the
// default is 2 seconds, within the expected 1-5s range.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// NewScheduler builds a Scheduler backed by store.
func NewScheduler(store *Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:        store,
		logger:       slog.Default().With("component", "cron"),
		now:          time.Now,
		tickInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add normalizes and validates expr, computes the first firing time
// strictly after now, and persists the job. A job whose schedule never
// fires again is rejected before it is ever written.
func (s *Scheduler) Add(expression, command string) (models.CronJob, error) {
	sched, err := Parse(expression)
	if err != nil {
		return models.CronJob{}, err
	}
	now := s.now()
	next := sched.Next(now)
	if next.IsZero() {
		return models.CronJob{}, fmt.Errorf("cron: expression %q never fires again", expression)
	}

	job := models.CronJob{
		ID:         uuid.NewString(),
		Expression: expression,
		Command:    command,
		CreatedAt:  now,
		NextRun:    next,
	}
	if err := s.store.Insert(job); err != nil {
		return models.CronJob{}, err
	}
	return job, nil
}

// List returns every job ordered by next_run ascending.
func (s *Scheduler) List() ([]models.CronJob, error) { return s.store.List() }

// Remove deletes a job by id.
func (s *Scheduler) Remove(id string) (bool, error) { return s.store.Remove(id) }

// History returns execution history for a job, most recent first.
func (s *Scheduler) History(id string, limit int) ([]models.JobExecution, error) {
	return s.store.History(id, limit)
}

// Start begins the tick loop in a background goroutine; Stop ends it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.RunDue(ctx)
			}
		}
	}()
}

// Stop signals the tick loop to exit and waits for it to do so.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

// RunDue queries for due jobs and runs each one, returning how many ran.
// Exposed directly so callers such as tests can force a tick without
// waiting on the ticker.
func (s *Scheduler) RunDue(ctx context.Context) int {
	now := s.now()
	due, err := s.store.Due(now)
	if err != nil {
		s.logger.Warn("cron: query due jobs failed", "error", err)
		return 0
	}
	var wg sync.WaitGroup
	wg.Add(len(due))
	for _, job := range due {
		job := job
		go func() {
			defer wg.Done()
			s.runOne(ctx, job)
		}()
	}
	wg.Wait()
	return len(due)
}

func (s *Scheduler) runOne(ctx context.Context, job models.CronJob) {
	started := s.now()
	output, runErr := s.execute(ctx, job.Command)
	finished := s.now()

	status := models.ExecutionOK
	if runErr != nil {
		status = models.ExecutionError
	}

	sched, parseErr := Parse(job.Expression)
	next := finished
	if parseErr == nil {
		next = sched.Next(finished)
	}
	if parseErr != nil || next.IsZero() {
		// The expression was validated at Add time; a failure here means
		// the persisted schedule has gone stale (e.g. clock skew). Push
		// the job an hour out rather than dropping it silently.
		next = finished.Add(time.Hour)
	}

	job.NextRun = next
	job.LastRun = &finished
	job.LastStatus = string(status)
	job.LastOutput = output

	exec := models.JobExecution{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		Status:    status,
		StartedAt: started,
		Duration:  finished.Sub(started),
		Output:    output,
	}

	if err := s.store.RecordRun(job, exec); err != nil {
		s.logger.Warn("cron: record run failed", "job_id", job.ID, "error", err)
	}
	if runErr != nil {
		s.logger.Warn("cron job failed", "job_id", job.ID, "error", runErr)
	}
}

// execute launches command through the shell and captures combined
// stdout+stderr, matching the spec's "as though from a shell" contract.
func (s *Scheduler) execute(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}
