package security

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordActionRoundTrip(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cur := base
	p := &Policy{MaxActionsPerHour: 2, now: func() time.Time { return cur }}

	if !p.RecordAction() {
		t.Fatal("1st call should be accepted")
	}
	if !p.RecordAction() {
		t.Fatal("2nd call should be accepted")
	}
	if p.RecordAction() {
		t.Fatal("3rd call within the hour should be rejected")
	}

	cur = base.Add(61 * time.Minute)
	if !p.RecordAction() {
		t.Fatal("call after 61 minutes should be accepted: quota fully restored")
	}
}

func TestResolvePathConfinement(t *testing.T) {
	dir := t.TempDir()
	p := &Policy{WorkspaceOnly: true, WorkspaceDir: dir}

	ok, err := p.ResolvePath("notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(ok) != dir {
		t.Errorf("expected resolved path under %q, got %q", dir, ok)
	}

	if _, err := p.ResolvePath("../../etc/passwd"); err == nil {
		t.Error("expected escape attempt to be rejected")
	}

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	ok2, err := p.ResolvePath(filepath.Join("sub", "f.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(ok2) != sub {
		t.Errorf("expected resolved path under %q, got %q", sub, ok2)
	}
}

func TestCheckCommand(t *testing.T) {
	p := &Policy{AllowedCommands: []string{"ls", "cat"}}
	if err := p.CheckCommand("ls"); err != nil {
		t.Errorf("ls should be allowed: %v", err)
	}
	if err := p.CheckCommand("rm"); err == nil {
		t.Error("rm should be rejected")
	}

	open := &Policy{}
	if err := open.CheckCommand("anything"); err != nil {
		t.Errorf("empty allow-list should permit everything: %v", err)
	}
}
