package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haasonsaas/nexuscore/internal/security"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

// forcedFinalPrompt is the synthetic User message appended when the
// iteration budget is exhausted with no terminal text, per §4.1.
const forcedFinalPrompt = "Please deliver a final answer now. Do not call any more tools."

const fallbackFinalAnswer = "couldn't produce final answer within iteration limit"

// Options configures one run_tool_loop invocation.
type Options struct {
	Model         string
	Temperature   float64
	MaxIterations int
	Security      *security.Policy
	Observer      Observer
	Quiet         bool
}

func (o Options) sanitized() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 1
	}
	if o.Observer == nil {
		o.Observer = NoopObserver{}
	}
	return o
}

// RunToolLoop drives a multi-turn conversation with provider under the
// contract in §4.1: repeat up to MaxIterations times, calling
// provider.ChatWithTools; a Text response terminates the turn; a ToolUse
// response is run through the tool harness and the loop continues. If the
// budget is exhausted with no terminal text, one forced tools-disabled
// call produces the final answer.
//
// history is mutated in place; the returned string is the final
// assistant text.
func RunToolLoop(ctx context.Context, provider Provider, history *History, registry *Registry, opts Options) (string, error) {
	opts = opts.sanitized()
	if provider == nil {
		return "", ErrNoProvider
	}

	toolDefs := registry.Definitions()

	for iteration := 1; iteration <= opts.MaxIterations; iteration++ {
		resp, err := provider.ChatWithTools(ctx, history.Snapshot(), toolDefs, opts.Model, opts.Temperature)
		if err != nil {
			return "", &LoopError{Phase: PhaseProviderCall, Iteration: iteration, Cause: err}
		}

		if resp.IsText() {
			text := resp.Text
			history.Append(models.Assistant(&text, nil))
			return text, nil
		}

		var preamble *string
		if resp.Text != "" {
			t := resp.Text
			preamble = &t
		}
		history.Append(models.Assistant(preamble, resp.ToolCalls))

		results := runToolHarness(registry, opts.Security, opts.Observer, resp.ToolCalls)
		history.Append(results...)
	}

	// Budget exhausted: force one final, tools-disabled call.
	history.Append(models.User(forcedFinalPrompt))
	resp, err := provider.ChatWithTools(ctx, history.Snapshot(), nil, opts.Model, opts.Temperature)
	if err != nil {
		return "", &LoopError{Phase: PhaseFinalize, Iteration: opts.MaxIterations + 1, Cause: err}
	}

	final := resp.Text
	if resp.IsText() {
		final = resp.Text
	} else if final == "" {
		final = fallbackFinalAnswer
	}
	history.Append(models.Assistant(&final, nil))
	return final, nil
}

// runToolHarness executes calls sequentially and returns one Tool message
// per call, in the exact order the provider listed them — the ordering
// guarantee from §4.1/§5 holds trivially for sequential execution.
func runToolHarness(registry *Registry, policy *security.Policy, observer Observer, calls []models.ToolCall) []models.ChatMessage {
	results := make([]models.ChatMessage, len(calls))
	for i, call := range calls {
		start := time.Now()
		content, success := executeToolCall(registry, policy, call)
		observer.OnToolCall(call.Name, time.Since(start), success)
		results[i] = models.Tool(call.ID, content)
	}
	return results
}

func executeToolCall(registry *Registry, policy *security.Policy, call models.ToolCall) (content string, success bool) {
	tool, ok := registry.Get(call.Name)
	if !ok {
		return renderToolError(NewToolError(ToolErrorNotFound, call.Name, fmt.Errorf("unknown tool %q", call.Name))), false
	}

	if policy != nil && !policy.RecordAction() {
		return renderToolError(NewToolError(ToolErrorRateLimited, call.Name, errors.New("rate limit exceeded for this hour"))), false
	}

	args := json.RawMessage(call.Arguments)
	if !json.Valid(args) {
		return renderToolError(NewToolError(ToolErrorInvalidInput, call.Name, errors.New("arguments are not valid JSON"))), false
	}
	if err := registry.Validate(call.Name, args); err != nil {
		return renderToolError(NewToolError(ToolErrorInvalidInput, call.Name, fmt.Errorf("invalid arguments: %w", err))), false
	}

	result := tool.Execute(args)
	text := result.Content()
	if strings.HasPrefix(text, "Error:") {
		cause := errors.New(strings.TrimSpace(strings.TrimPrefix(text, "Error:")))
		return renderToolError(NewToolError(ToolErrorExecution, call.Name, cause)), false
	}
	return text, true
}

// renderToolError formats a ToolError the way the rest of the harness
// renders tool failures, so callers that only match on the "Error:"
// prefix (e.g. Observer logging, CLI output) keep working unchanged.
func renderToolError(err *ToolError) string {
	return "Error: " + err.Error()
}
