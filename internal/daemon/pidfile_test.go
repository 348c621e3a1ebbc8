package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := WritePID(path); err != nil {
		t.Fatalf("WritePID: %v", err)
	}
	pid, err := ReadPID(path)
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("got pid %d, want %d", pid, os.Getpid())
	}
}

func TestIsRunningRemovesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	// A PID that almost certainly does not correspond to a live process.
	if err := os.WriteFile(path, []byte("999999"), 0644); err != nil {
		t.Fatalf("write stale pid file: %v", err)
	}

	running, _, err := IsRunning(path)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if running {
		t.Fatal("expected stale pid to report not running")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the stale pid file to be removed")
	}
}

func TestIsRunningReportsLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := WritePID(path); err != nil {
		t.Fatalf("WritePID: %v", err)
	}
	running, pid, err := IsRunning(path)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if !running || pid != os.Getpid() {
		t.Errorf("got running=%v pid=%d, want true/%d", running, pid, os.Getpid())
	}
}
