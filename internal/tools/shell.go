// Package tools holds the kernel's built-in tools: shell execution, file
// read/write, and memory recall, each satisfying internal/agent.Tool and
// gated by internal/security.Policy. Grounded on the teacher's
// internal/tools/exec and internal/tools/files packages, trimmed to the
// synchronous Execute(args) models.ToolResult contract this kernel uses
// in place of the teacher's context-taking, error-returning one.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/haasonsaas/nexuscore/internal/security"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

const defaultShellTimeout = 60 * time.Second

// ShellTool runs a command through "sh -c" in the policy's workspace
// directory, confined by the supplied policy's command allow-list. The
// action-rate budget is charged by the agent loop, not by this tool.
type ShellTool struct {
	Policy  *security.Policy
	Timeout time.Duration
}

// NewShellTool creates a shell tool gated by policy.
func NewShellTool(policy *security.Policy) *ShellTool {
	return &ShellTool{Policy: policy, Timeout: defaultShellTimeout}
}

func (t *ShellTool) Name() string { return "shell" }

func (t *ShellTool) Description() string {
	return "Run a shell command in the workspace and return its combined stdout/stderr."
}

func (t *ShellTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"command": {"type": "string", "description": "Shell command to run via sh -c."},
			"timeout_seconds": {"type": "integer", "minimum": 0, "description": "Timeout in seconds (0 uses the tool default)."}
		},
		"required": ["command"]
	}`)
}

func (t *ShellTool) Execute(args json.RawMessage) models.ToolResult {
	var input struct {
		Command        string `json:"command"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return models.ToolResult{Error: fmt.Sprintf("invalid parameters: %v", err)}
	}
	command := strings.TrimSpace(input.Command)
	if command == "" {
		return models.ToolResult{Error: "command is required"}
	}

	if t.Policy != nil {
		if err := t.Policy.CheckCommand(commandName(command)); err != nil {
			return models.ToolResult{Error: err.Error()}
		}
	}

	timeout := t.Timeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if t.Policy != nil && t.Policy.WorkspaceDir != "" {
		cmd.Dir = t.Policy.WorkspaceDir
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	if runErr != nil {
		return models.ToolResult{Output: out.String(), Error: runErr.Error()}
	}
	return models.ToolResult{Success: true, Output: out.String()}
}

// commandName extracts the first whitespace-separated token of a shell
// command, the same thing CheckCommand's allow-list is matched against.
func commandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
