package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/haasonsaas/nexuscore/internal/security"
)

func TestFileWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	policy := &security.Policy{WorkspaceOnly: true, WorkspaceDir: dir}

	write := NewFileWriteTool(policy)
	result := write.Execute(json.RawMessage(`{"path": "notes/todo.txt", "content": "buy milk"}`))
	if !result.Success {
		t.Fatalf("write failed: %s", result.Error)
	}

	if _, err := os.Stat(filepath.Join(dir, "notes", "todo.txt")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	read := NewFileReadTool(policy)
	readResult := read.Execute(json.RawMessage(`{"path": "notes/todo.txt"}`))
	if !readResult.Success {
		t.Fatalf("read failed: %s", readResult.Error)
	}
	var decoded struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(readResult.Output), &decoded); err != nil {
		t.Fatalf("unmarshal read output: %v", err)
	}
	if decoded.Content != "buy milk" {
		t.Errorf("expected content %q, got %q", "buy milk", decoded.Content)
	}
}

func TestFileWriteAppend(t *testing.T) {
	dir := t.TempDir()
	policy := &security.Policy{WorkspaceOnly: true, WorkspaceDir: dir}
	write := NewFileWriteTool(policy)

	write.Execute(json.RawMessage(`{"path": "log.txt", "content": "a"}`))
	result := write.Execute(json.RawMessage(`{"path": "log.txt", "content": "b", "append": true}`))
	if !result.Success {
		t.Fatalf("append failed: %s", result.Error)
	}

	content, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(content) != "ab" {
		t.Errorf("expected appended content %q, got %q", "ab", string(content))
	}
}

func TestFileReadRejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	policy := &security.Policy{WorkspaceOnly: true, WorkspaceDir: dir}
	read := NewFileReadTool(policy)
	result := read.Execute(json.RawMessage(`{"path": "../../etc/passwd"}`))
	if result.Success {
		t.Fatal("expected escape attempt to be rejected")
	}
}
