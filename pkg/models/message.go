// Package models holds the data types shared across the agent kernel:
// chat messages, tool definitions, cron jobs and supervisor health state.
package models

import "encoding/json"

// Role discriminates the four ChatMessage variants.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to invoke a tool. ID is opaque and
// assigned by the provider; the kernel never rewrites it. Arguments is
// always the normalized JSON-string form, even when the provider returned
// an object on the wire.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is a tagged union over System, User, Assistant and Tool
// variants. Only the fields relevant to Role are populated; the rest are
// left at their zero value and omitted from JSON.
type ChatMessage struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// System builds a System message.
func System(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: &content}
}

// User builds a User message.
func User(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: &content}
}

// Assistant builds an Assistant message. content may be nil when the
// message carries only tool calls.
func Assistant(content *string, calls []ToolCall) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// Tool builds a Tool result message answering the call identified by id.
func Tool(toolCallID, content string) ChatMessage {
	return ChatMessage{Role: RoleTool, Content: &content, ToolCallID: toolCallID}
}

// ContentText returns the message's content, or "" if it has none.
func (m ChatMessage) ContentText() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasToolCalls reports whether the message carries one or more tool calls.
func (m ChatMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToolDefinition is the JSON-Schema-bearing descriptor of a tool
// advertised to the provider.
type ToolDefinition struct {
	Kind     string             `json:"kind"`
	Function ToolFunctionSchema `json:"function"`
}

// ToolFunctionSchema describes one callable function's contract.
type ToolFunctionSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// NewToolDefinition builds a function-kind tool definition.
func NewToolDefinition(name, description string, parameters json.RawMessage) ToolDefinition {
	return ToolDefinition{
		Kind: "function",
		Function: ToolFunctionSchema{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// ToolResult is the internal outcome of one tool invocation, before it is
// rendered into a Tool chat message.
type ToolResult struct {
	Success bool
	Output  string
	Error   string
}

// Content renders the result into the text that belongs in a Tool
// message, following the mapping in the tool harness contract: success
// yields the output verbatim; failure yields "Error: " plus the error
// (falling back to the output if no error text was set).
func (r ToolResult) Content() string {
	if r.Success {
		return r.Output
	}
	msg := r.Error
	if msg == "" {
		msg = r.Output
	}
	return "Error: " + msg
}

// ResponseKind discriminates the two ChatResponse variants.
type ResponseKind string

const (
	ResponseText    ResponseKind = "text"
	ResponseToolUse ResponseKind = "tool_use"
)

// ChatResponse is what a Provider returns for one chat_with_tools call:
// either a terminal Text, or a ToolUse carrying the calls the model wants
// executed plus any preamble text it emitted alongside them.
type ChatResponse struct {
	Kind      ResponseKind
	Text      string
	ToolCalls []ToolCall
}

// IsText reports whether this response terminates the turn.
func (r ChatResponse) IsText() bool {
	return r.Kind == ResponseText
}
