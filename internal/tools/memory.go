package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexuscore/internal/memory"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

// MemoryStoreTool upserts a key/value entry in the memory store.
type MemoryStoreTool struct {
	Store *memory.Store
}

func NewMemoryStoreTool(store *memory.Store) *MemoryStoreTool {
	return &MemoryStoreTool{Store: store}
}

func (t *MemoryStoreTool) Name() string { return "memory_store" }

func (t *MemoryStoreTool) Description() string {
	return "Store or update a key/value memory entry for later recall."
}

func (t *MemoryStoreTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"key": {"type": "string", "description": "Memory key."},
			"value": {"type": "string", "description": "Memory value."}
		},
		"required": ["key", "value"]
	}`)
}

func (t *MemoryStoreTool) Execute(args json.RawMessage) models.ToolResult {
	var input struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return models.ToolResult{Error: fmt.Sprintf("invalid parameters: %v", err)}
	}
	if strings.TrimSpace(input.Key) == "" {
		return models.ToolResult{Error: "key is required"}
	}
	if t.Store == nil {
		return models.ToolResult{Error: "memory store unavailable"}
	}
	if err := t.Store.Store(input.Key, input.Value); err != nil {
		return models.ToolResult{Error: err.Error()}
	}
	return models.ToolResult{Success: true, Output: fmt.Sprintf("stored %q", input.Key)}
}

// MemoryRecallTool searches stored entries by key/value substring.
type MemoryRecallTool struct {
	Store *memory.Store
}

func NewMemoryRecallTool(store *memory.Store) *MemoryRecallTool {
	return &MemoryRecallTool{Store: store}
}

func (t *MemoryRecallTool) Name() string { return "memory_recall" }

func (t *MemoryRecallTool) Description() string {
	return "Search stored memory entries by a case-insensitive key/value substring match."
}

func (t *MemoryRecallTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Substring to match against keys and values; empty returns everything."},
			"limit": {"type": "integer", "minimum": 0, "description": "Maximum entries to return (default 20)."}
		}
	}`)
}

func (t *MemoryRecallTool) Execute(args json.RawMessage) models.ToolResult {
	var input struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return models.ToolResult{Error: fmt.Sprintf("invalid parameters: %v", err)}
		}
	}
	if t.Store == nil {
		return models.ToolResult{Error: "memory store unavailable"}
	}
	entries, err := t.Store.Recall(input.Query, input.Limit)
	if err != nil {
		return models.ToolResult{Error: err.Error()}
	}
	payload, err := json.MarshalIndent(map[string]any{"entries": entries}, "", "  ")
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("encode result: %v", err)}
	}
	return models.ToolResult{Success: true, Output: string(payload)}
}

// MemoryForgetTool deletes a stored entry by key.
type MemoryForgetTool struct {
	Store *memory.Store
}

func NewMemoryForgetTool(store *memory.Store) *MemoryForgetTool {
	return &MemoryForgetTool{Store: store}
}

func (t *MemoryForgetTool) Name() string { return "memory_forget" }

func (t *MemoryForgetTool) Description() string {
	return "Delete a stored memory entry by key."
}

func (t *MemoryForgetTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"key": {"type": "string", "description": "Memory key to delete."}
		},
		"required": ["key"]
	}`)
}

func (t *MemoryForgetTool) Execute(args json.RawMessage) models.ToolResult {
	var input struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return models.ToolResult{Error: fmt.Sprintf("invalid parameters: %v", err)}
	}
	if strings.TrimSpace(input.Key) == "" {
		return models.ToolResult{Error: "key is required"}
	}
	if t.Store == nil {
		return models.ToolResult{Error: "memory store unavailable"}
	}
	removed, err := t.Store.Forget(input.Key)
	if err != nil {
		return models.ToolResult{Error: err.Error()}
	}
	if !removed {
		return models.ToolResult{Error: fmt.Sprintf("no memory entry for key %q", input.Key)}
	}
	return models.ToolResult{Success: true, Output: fmt.Sprintf("forgot %q", input.Key)}
}
