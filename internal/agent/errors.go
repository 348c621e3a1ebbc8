package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced by the tool-calling loop and its collaborators.
var (
	ErrNoProvider  = errors.New("no provider configured")
	ErrToolNotFound = errors.New("tool not found")
	ErrBadHistory  = errors.New("history violates invariants")
)

// ToolErrorType categorizes a failed tool invocation for the harness's
// error-message rendering. It never affects loop control flow: every
// tool error becomes a Tool chat message, never a terminated turn.
type ToolErrorType string

const (
	ToolErrorNotFound     ToolErrorType = "not_found"
	ToolErrorRateLimited  ToolErrorType = "rate_limited"
	ToolErrorInvalidInput ToolErrorType = "invalid_input"
	ToolErrorExecution    ToolErrorType = "execution"
)

// ToolError is a structured error from tool execution, carrying enough
// context for the harness to render a useful message and for an Observer
// to log it.
type ToolError struct {
	Type       ToolErrorType
	ToolName   string
	ToolCallID string
	Message    string
	Cause      error
}

func (e *ToolError) Error() string {
	parts := []string{fmt.Sprintf("[tool:%s]", e.Type)}
	if e.ToolName != "" {
		parts = append(parts, e.ToolName)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// NewToolError builds a ToolError of the given type wrapping cause.
func NewToolError(errType ToolErrorType, toolName string, cause error) *ToolError {
	e := &ToolError{Type: errType, ToolName: toolName, Cause: cause}
	if cause != nil {
		e.Message = cause.Error()
	}
	return e
}

// LoopPhase is a distinct stage of one run_tool_loop iteration, used only
// for LoopError context.
type LoopPhase string

const (
	PhaseProviderCall LoopPhase = "provider_call"
	PhaseToolHarness  LoopPhase = "tool_harness"
	PhaseFinalize     LoopPhase = "finalize"
)

// LoopError wraps an error encountered while running the tool-calling
// loop with the phase and iteration it occurred in.
type LoopError struct {
	Phase     LoopPhase
	Iteration int
	Cause     error
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("tool loop error at %s (iteration %d): %v", e.Phase, e.Iteration, e.Cause)
}

func (e *LoopError) Unwrap() error {
	return e.Cause
}
