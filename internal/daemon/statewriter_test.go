package daemon

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

func TestStateWriterFlushesAndCleansUp(t *testing.T) {
	registry := NewRegistry()
	registry.MarkOK("gateway")

	path := filepath.Join(t.TempDir(), "state.json")
	writer := &StateWriter{Registry: registry, Path: path, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		writer.Run(ctx)
		close(done)
	}()

	var state models.DaemonState
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && json.Unmarshal(data, &state) == nil && len(state.Components) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(state.Components) == 0 {
		t.Fatal("state file was never flushed with content")
	}
	if state.Components["gateway"].Status != models.HealthOK {
		t.Errorf("unexpected gateway status in flushed state: %+v", state.Components["gateway"])
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not stop after cancellation")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the state file to be removed on shutdown")
	}
}
