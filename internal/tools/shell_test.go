package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/haasonsaas/nexuscore/internal/security"
)

func TestShellToolRunsCommand(t *testing.T) {
	tool := NewShellTool(nil)
	result := tool.Execute(json.RawMessage(`{"command": "echo hello"}`))
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if !strings.Contains(result.Output, "hello") {
		t.Errorf("expected output to contain hello, got %q", result.Output)
	}
}

func TestShellToolReportsCommandFailure(t *testing.T) {
	tool := NewShellTool(nil)
	result := tool.Execute(json.RawMessage(`{"command": "exit 3"}`))
	if result.Success {
		t.Fatal("expected failure for nonzero exit")
	}
	if result.Error == "" {
		t.Error("expected an error message")
	}
}

func TestShellToolRejectsDisallowedCommand(t *testing.T) {
	policy := &security.Policy{AllowedCommands: []string{"ls"}}
	tool := NewShellTool(policy)
	result := tool.Execute(json.RawMessage(`{"command": "rm -rf /"}`))
	if result.Success {
		t.Fatal("expected rejection of disallowed command")
	}
}

func TestShellToolRequiresCommand(t *testing.T) {
	tool := NewShellTool(nil)
	result := tool.Execute(json.RawMessage(`{"command": "  "}`))
	if result.Success {
		t.Fatal("expected failure for empty command")
	}
}
