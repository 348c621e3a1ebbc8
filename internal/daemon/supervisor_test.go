package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haasonsaas/nexuscore/internal/backoff"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

func TestSupervisorRestartsOnError(t *testing.T) {
	registry := NewRegistry()
	sup := &Supervisor{
		Registry: registry,
		Logger:   slog.Default(),
		Policy:   backoff.Policy{Initial: 0, Max: 0, Factor: 2},
		Sleep:    func(context.Context, time.Duration) error { return nil },
	}

	var calls int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sup.Supervise(ctx, "worker", func(ctx context.Context) error {
			n := atomic.AddInt32(&calls, 1)
			if n >= 3 {
				cancel()
			}
			return errors.New("boom")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}

	if atomic.LoadInt32(&calls) < 3 {
		t.Errorf("expected at least 3 runs, got %d", calls)
	}

	snap := registry.Snapshot()
	entry, ok := snap.Components["worker"]
	if !ok {
		t.Fatal("expected a health entry for worker")
	}
	if entry.RestartCount < 2 {
		t.Errorf("expected restart_count >= 2, got %d", entry.RestartCount)
	}
}

func TestSupervisorMarksCleanExitAsUnexpected(t *testing.T) {
	registry := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	// A Sleep that blocks until the test cancels ctx holds the restart
	// loop still right after the post-run mark, so the registry snapshot
	// below is race-free: no further iteration can run before cancel().
	marked := make(chan struct{})
	sup := &Supervisor{
		Registry: registry,
		Logger:   slog.Default(),
		Policy:   backoff.Policy{Initial: time.Millisecond, Max: time.Millisecond, Factor: 2},
		Sleep: func(ctx context.Context, d time.Duration) error {
			close(marked)
			<-ctx.Done()
			return ctx.Err()
		},
	}

	done := make(chan struct{})
	go func() {
		sup.Supervise(ctx, "worker", func(ctx context.Context) error {
			return nil
		})
		close(done)
	}()

	select {
	case <-marked:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor never reached the post-run mark")
	}

	snap := registry.Snapshot()
	entry := snap.Components["worker"]
	if entry.Status != models.HealthError {
		t.Errorf("expected status error after a clean exit, got %q", entry.Status)
	}
	if entry.LastError != "component exited unexpectedly" {
		t.Errorf("unexpected LastError: %q", entry.LastError)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
}

func TestRunMarksDaemonErrorOnShutdown(t *testing.T) {
	registry := NewRegistry()
	sup := &Supervisor{
		Registry: registry,
		Logger:   slog.Default(),
		Policy:   backoff.NewSupervisorPolicy(time.Millisecond, time.Millisecond),
		Sleep:    func(context.Context, time.Duration) error { return nil },
	}

	ctx, cancel := context.WithCancel(context.Background())
	components := map[string]Component{
		"gateway": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	done := make(chan struct{})
	go func() {
		sup.Run(ctx, components)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	snap := registry.Snapshot()
	daemonEntry, ok := snap.Components["daemon"]
	if !ok || daemonEntry.LastError != "shutdown requested" {
		t.Errorf("expected daemon entry with shutdown requested, got %+v", daemonEntry)
	}
}
