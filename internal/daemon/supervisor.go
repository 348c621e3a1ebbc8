package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/haasonsaas/nexuscore/internal/backoff"
)

// Component is one supervised unit: an asynchronous operation that
// normally runs until ctx is cancelled. A clean return (nil or non-nil
// error) before that point is treated as a crash — components are not
// supposed to exit on their own.
type Component func(ctx context.Context) error

// Supervisor runs one supervised goroutine per named component,
// restarting it with exponential back-off on every exit.
type Supervisor struct {
	Registry *Registry
	Logger   *slog.Logger
	Policy   backoff.Policy
	Sleep    func(context.Context, time.Duration) error

	wg sync.WaitGroup
}

// NewSupervisor builds a Supervisor with the default supervisor
// back-off policy (pure doubling, no jitter, 1s floor).
func NewSupervisor(registry *Registry, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		Registry: registry,
		Logger:   logger.With("component", "supervisor"),
		Policy:   backoff.NewSupervisorPolicy(time.Second, time.Minute),
		Sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Supervise registers and runs one component under one-for-one restart:
// mark ok, run, on error or clean exit mark error and back off, doubling
// the back-off on each consecutive failure. A nil return is itself an
// unexpected exit: it is marked as an error, and it also resets the
// back-off so the next sleep uses the initial value again.
// Blocks until ctx is cancelled.
func (s *Supervisor) Supervise(ctx context.Context, name string, run Component) {
	s.wg.Add(1)
	defer s.wg.Done()

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		s.Registry.MarkOK(name)
		err := run(ctx)

		if ctx.Err() != nil {
			return
		}

		if err != nil {
			s.Registry.MarkError(name, err.Error())
		} else {
			s.Registry.MarkError(name, "component exited unexpectedly")
			attempt = 0
		}
		s.Registry.IncrementRestart(name)

		attempt++
		delay := backoff.Compute(s.Policy, attempt)
		s.Logger.Warn("component restarting", "component", name, "attempt", attempt, "delay", delay, "error", err)

		sleep := s.Sleep
		if sleep == nil {
			sleep = sleepCtx
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return
		}
	}
}

// Run launches one supervised goroutine per entry in components and
// blocks until ctx is cancelled, at which point it marks the daemon
// itself as stopped and waits for every supervised goroutine to notice
// cancellation and return.
func (s *Supervisor) Run(ctx context.Context, components map[string]Component) {
	for name, run := range components {
		s.wg.Add(1)
		go func(name string, run Component) {
			defer s.wg.Done()
			s.Supervise(ctx, name, run)
		}(name, run)
	}
	<-ctx.Done()
	s.Registry.MarkError("daemon", "shutdown requested")
	s.wg.Wait()
}

// Noop is a Component for a disabled subsystem (e.g. channels with no
// transports configured): it registers ok with zero restarts and blocks
// until ctx is cancelled, logging once that it is disabled.
func Noop(name string, logger *slog.Logger) Component {
	return func(ctx context.Context) error {
		if logger != nil {
			logger.Info(fmt.Sprintf("%s disabled: nothing configured", name))
		}
		<-ctx.Done()
		return nil
	}
}
