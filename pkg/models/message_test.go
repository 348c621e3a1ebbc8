package models

import (
	"encoding/json"
	"testing"
)

func TestChatMessageRoundTrip(t *testing.T) {
	cases := []ChatMessage{
		System("sys"),
		User("hello"),
		Assistant(strPtr("hi there"), nil),
		Assistant(nil, []ToolCall{{ID: "call_1", Name: "echo", Arguments: `{"text":"hi"}`}}),
		Tool("call_1", "hi"),
	}

	for _, want := range cases {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got ChatMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Role != want.Role {
			t.Errorf("role mismatch: got %q want %q", got.Role, want.Role)
		}
		if got.ContentText() != want.ContentText() {
			t.Errorf("content mismatch: got %q want %q", got.ContentText(), want.ContentText())
		}
		if len(got.ToolCalls) != len(want.ToolCalls) {
			t.Errorf("tool_calls length mismatch: got %d want %d", len(got.ToolCalls), len(want.ToolCalls))
		}
		if got.ToolCallID != want.ToolCallID {
			t.Errorf("tool_call_id mismatch: got %q want %q", got.ToolCallID, want.ToolCallID)
		}
	}
}

func TestToolResultContent(t *testing.T) {
	cases := []struct {
		name string
		r    ToolResult
		want string
	}{
		{"success", ToolResult{Success: true, Output: "done"}, "done"},
		{"failure with error", ToolResult{Success: false, Error: "boom"}, "Error: boom"},
		{"failure falls back to output", ToolResult{Success: false, Output: "boom"}, "Error: boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Content(); got != tc.want {
				t.Errorf("got %q want %q", got, tc.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
