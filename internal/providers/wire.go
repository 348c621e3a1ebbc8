// Package providers implements the OpenAI-compatible wire provider: a
// Provider adapter the tool loop drives to reach any OpenAI-compatible
// chat-completions endpoint, plus a resilience wrapper that retries
// transient failures with exponential back-off.
package providers

import (
	"bytes"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// wireRequest is the strict OpenAI chat-completions request body from
// §6: {model, messages, temperature, tools?}. It reuses go-openai's
// message and tool types directly for JSON (de)serialization so the wire
// shape matches go-openai's own client byte-for-byte, while the HTTP
// transport around it is hand-rolled to support arbitrary endpoints and
// auth headers that the go-openai client does not allow configuring.
type wireRequest struct {
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	Temperature float32                        `json:"temperature"`
	Tools       []openai.Tool                  `json:"tools,omitempty"`
}

// wireResponse is the strict response shape: only the first choice's
// message matters to this kernel. Unlike the request side, the response
// is NOT decoded into go-openai's ChatCompletionMessage: that struct
// types function-call arguments as a plain Go string, which cannot
// unmarshal a non-compliant provider's object-shaped arguments. rawToolCall
// keeps arguments as json.RawMessage so both wire shapes decode cleanly;
// normalizeArguments then reduces either shape to the canonical string.
type wireResponse struct {
	Choices []struct {
		Message rawMessage `json:"message"`
	} `json:"choices"`
}

type rawMessage struct {
	Content   string         `json:"content"`
	ToolCalls []rawToolCall `json:"tool_calls"`
}

type rawToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

func (r wireResponse) firstMessage() (rawMessage, bool) {
	if len(r.Choices) == 0 {
		return rawMessage{}, false
	}
	return r.Choices[0].Message, true
}

// toWireMessages converts the kernel's ChatMessage union to go-openai's
// wire message type. Absent fields are left at their zero value, which
// json.Marshal omits via "omitempty" on the go-openai struct tags.
func toWireMessages(history []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		wm := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			ToolCallID: m.ToolCallID,
		}
		if m.Content != nil {
			wm.Content = *m.Content
		}
		if len(m.ToolCalls) > 0 {
			wm.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				wm.ToolCalls[i] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
		}
		out = append(out, wm)
	}
	return out
}

// toWireTools converts ToolDefinitions to go-openai's Tool wire type.
func toWireTools(defs []models.ToolDefinition) []openai.Tool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]openai.Tool, len(defs))
	for i, d := range defs {
		var params any
		_ = json.Unmarshal(d.Function.Parameters, &params)
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Function.Name,
				Description: d.Function.Description,
				Parameters:  params,
			},
		}
	}
	return out
}

// toChatResponse maps the wire response's first-choice message to the
// kernel's ChatResponse sum type, normalizing tool-call arguments per
// §4.2's robustness rule.
func toChatResponse(msg rawMessage) models.ChatResponse {
	if len(msg.ToolCalls) == 0 {
		return models.ChatResponse{Kind: models.ResponseText, Text: msg.Content}
	}

	calls := make([]models.ToolCall, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		calls[i] = models.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: normalizeArguments(tc.Function.Arguments),
		}
	}
	return models.ChatResponse{Kind: models.ResponseToolUse, Text: msg.Content, ToolCalls: calls}
}

// normalizeArguments accepts either a JSON-string or JSON-object encoding
// of tool-call arguments (raw is the untouched bytes of the "arguments"
// field) and returns the canonical JSON-string form the kernel stores in
// history. If the field was itself a JSON string (the compliant OpenAI
// wire shape), json.RawMessage holds the quoted string bytes and
// unmarshaling into a Go string unwraps it to the inner text. If the
// field was a bare object, it is re-serialized to its compact string
// form.
func normalizeArguments(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		return compact.String()
	}
	return string(raw)
}
