package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/haasonsaas/nexuscore/internal/security"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

// scriptedProvider replays a fixed sequence of ChatWithTools responses,
// one per call, matching the teacher's pattern of mock-provider scripts
// for loop tests.
type scriptedProvider struct {
	responses []models.ChatResponse
	calls     int
}

func (p *scriptedProvider) ChatWithSystem(ctx context.Context, system *string, userText, model string, temperature float64) (string, error) {
	return "", nil
}

func (p *scriptedProvider) ChatWithTools(ctx context.Context, history []models.ChatMessage, toolDefs []models.ToolDefinition, model string, temperature float64) (models.ChatResponse, error) {
	if p.calls >= len(p.responses) {
		panic("scriptedProvider: ran out of scripted responses")
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes the text argument back" }
func (echoTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)
}
func (echoTool) Execute(args json.RawMessage) models.ToolResult {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return models.ToolResult{Success: false, Error: err.Error()}
	}
	return models.ToolResult{Success: true, Output: parsed.Text}
}

func newRegistryWithEcho(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.Register(echoTool{}); err != nil {
		t.Fatalf("register echo: %v", err)
	}
	return r
}

func textResponse(s string) models.ChatResponse {
	return models.ChatResponse{Kind: models.ResponseText, Text: s}
}

func toolUseResponse(text string, calls ...models.ToolCall) models.ChatResponse {
	return models.ChatResponse{Kind: models.ResponseToolUse, Text: text, ToolCalls: calls}
}

// Scenario 1: text-only response.
func TestScenarioTextOnly(t *testing.T) {
	hist := NewHistory("sys", "hello")
	provider := &scriptedProvider{responses: []models.ChatResponse{textResponse("Hello!")}}
	reg := NewRegistry()

	got, err := RunToolLoop(context.Background(), provider, hist, reg, Options{MaxIterations: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello!" {
		t.Errorf("got %q want %q", got, "Hello!")
	}
	snap := hist.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("history length = %d, want 3", len(snap))
	}
	if snap[2].Role != models.RoleAssistant || snap[2].ContentText() != "Hello!" || snap[2].HasToolCalls() {
		t.Errorf("unexpected final message: %+v", snap[2])
	}
}

// Scenario 2: single tool round-trip.
func TestScenarioSingleToolRoundTrip(t *testing.T) {
	hist := NewHistory("sys", "echo something")
	provider := &scriptedProvider{responses: []models.ChatResponse{
		toolUseResponse("", models.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"text":"hello world"}`}),
		textResponse("The echo returned: hello world"),
	}}
	reg := newRegistryWithEcho(t)

	got, err := RunToolLoop(context.Background(), provider, hist, reg, Options{MaxIterations: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "The echo returned: hello world" {
		t.Errorf("got %q", got)
	}

	var toolMsgs []models.ChatMessage
	for _, m := range hist.Snapshot() {
		if m.Role == models.RoleTool {
			toolMsgs = append(toolMsgs, m)
		}
	}
	if len(toolMsgs) != 1 {
		t.Fatalf("expected exactly one Tool message, got %d", len(toolMsgs))
	}
	if toolMsgs[0].ToolCallID != "call_1" || toolMsgs[0].ContentText() != "hello world" {
		t.Errorf("unexpected tool message: %+v", toolMsgs[0])
	}
}

// Scenario 3: unknown tool.
func TestScenarioUnknownTool(t *testing.T) {
	hist := NewHistory("sys", "do the thing")
	provider := &scriptedProvider{responses: []models.ChatResponse{
		toolUseResponse("", models.ToolCall{ID: "call_1", Name: "nonexistent_tool", Arguments: `{}`}),
		textResponse("done"),
	}}
	reg := NewRegistry()
	policy := &security.Policy{MaxActionsPerHour: 1}

	got, err := RunToolLoop(context.Background(), provider, hist, reg, Options{MaxIterations: 5, Security: policy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Errorf("got %q", got)
	}

	found := false
	for _, m := range hist.Snapshot() {
		if m.Role == models.RoleTool {
			if !strings.Contains(m.ContentText(), "unknown tool") {
				t.Errorf("expected unknown-tool marker, got %q", m.ContentText())
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected a Tool message for the unknown-tool call")
	}
	if !policy.RecordAction() {
		t.Error("unknown-tool call must not consume rate budget: first real action should still be accepted")
	}
}

// Scenario 4: max-iterations trip.
func TestScenarioMaxIterationsTrip(t *testing.T) {
	hist := NewHistory("sys", "keep going")
	call := models.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"text":"x"}`}
	provider := &scriptedProvider{responses: []models.ChatResponse{
		toolUseResponse("", call),
		toolUseResponse("", call),
		toolUseResponse("", call),
		textResponse("Stopped after max iterations."),
	}}
	reg := newRegistryWithEcho(t)

	got, err := RunToolLoop(context.Background(), provider, hist, reg, Options{MaxIterations: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 4 {
		t.Errorf("expected exactly 4 provider calls, got %d", provider.calls)
	}
	if got != "Stopped after max iterations." {
		t.Errorf("got %q", got)
	}
}

// Scenario 5: history trim.
func TestScenarioHistoryTrim(t *testing.T) {
	r1, r2, r3 := "r1", "r2", "r3"
	h := []models.ChatMessage{
		models.System("sys"),
		models.User("m1"),
		models.Assistant(&r1, nil),
		models.User("m2"),
		models.Assistant(&r2, nil),
		models.User("m3"),
		models.Assistant(&r3, nil),
	}
	got := TrimHistory(h, 2)
	want := []models.ChatMessage{
		models.System("sys"),
		models.User("m2"),
		models.Assistant(&r2, nil),
		models.User("m3"),
		models.Assistant(&r3, nil),
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role || got[i].ContentText() != want[i].ContentText() {
			t.Errorf("index %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

// Scenario 6: rate limit.
func TestScenarioRateLimit(t *testing.T) {
	hist := NewHistory("sys", "echo twice")
	calls := []models.ToolCall{
		{ID: "call_1", Name: "echo", Arguments: `{"text":"one"}`},
		{ID: "call_2", Name: "echo", Arguments: `{"text":"two"}`},
	}
	provider := &scriptedProvider{responses: []models.ChatResponse{
		toolUseResponse("", calls...),
		textResponse("done"),
	}}
	reg := newRegistryWithEcho(t)
	policy := &security.Policy{MaxActionsPerHour: 1}

	_, err := RunToolLoop(context.Background(), provider, hist, reg, Options{MaxIterations: 5, Security: policy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := hist.Snapshot()
	if len(snap) != 6 {
		t.Fatalf("history length = %d, want 6", len(snap))
	}

	var toolMsgs []models.ChatMessage
	for _, m := range snap {
		if m.Role == models.RoleTool {
			toolMsgs = append(toolMsgs, m)
		}
	}
	if len(toolMsgs) != 2 {
		t.Fatalf("expected 2 tool messages, got %d", len(toolMsgs))
	}
	if toolMsgs[0].ContentText() != "one" {
		t.Errorf("first call should have succeeded, got %q", toolMsgs[0].ContentText())
	}
	if !strings.Contains(toolMsgs[1].ContentText(), "rate limit") {
		t.Errorf("second call should be rate-limited, got %q", toolMsgs[1].ContentText())
	}
}
