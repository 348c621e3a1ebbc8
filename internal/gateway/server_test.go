package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

type fakeHealth struct{ state models.DaemonState }

func (f fakeHealth) Snapshot() models.DaemonState { return f.state }

func TestHealthzServesSnapshot(t *testing.T) {
	health := fakeHealth{state: models.DaemonState{
		Components: map[string]models.HealthEntry{
			"gateway": {Status: models.HealthOK},
		},
	}}

	srv := NewServer("127.0.0.1", 0, health, nil)
	// port 0 would make net.Listen pick an ephemeral port, but the request
	// below needs a known address; use a fixed high port unlikely to
	// collide instead.
	srv.Addr = "127.0.0.1:18732"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop(context.Background())

	var resp *http.Response
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://127.0.0.1:18732/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("get /healthz: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var state models.DaemonState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if state.Components["gateway"].Status != models.HealthOK {
		t.Errorf("unexpected snapshot in response: %+v", state)
	}
}

func TestHealthzWithoutHealthSourceReportsOK(t *testing.T) {
	srv := NewServer("127.0.0.1", 0, nil, nil)
	srv.Addr = "127.0.0.1:18733"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop(context.Background())

	var resp *http.Response
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://127.0.0.1:18733/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("get /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d", resp.StatusCode)
	}
}
