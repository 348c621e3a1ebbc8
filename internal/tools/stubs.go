package tools

import (
	"encoding/json"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// WebSearchTool is the optional web_search built-in. With no search
// backend configured it reports a configuration error rather than being
// omitted from the registry, so the tool name and schema always exist.
type WebSearchTool struct {
	Backend func(query string) (string, error)
}

func NewWebSearchTool(backend func(query string) (string, error)) *WebSearchTool {
	return &WebSearchTool{Backend: backend}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web for a query; requires a configured search backend."
}

func (t *WebSearchTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Search query."}
		},
		"required": ["query"]
	}`)
}

func (t *WebSearchTool) Execute(args json.RawMessage) models.ToolResult {
	if t.Backend == nil {
		return models.ToolResult{Error: "web_search is not configured: no search backend is set"}
	}
	var input struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return models.ToolResult{Error: "invalid parameters: " + err.Error()}
	}
	output, err := t.Backend(input.Query)
	if err != nil {
		return models.ToolResult{Error: err.Error()}
	}
	return models.ToolResult{Success: true, Output: output}
}

// BrowserOpenTool is the optional browser_open built-in. This kernel
// never wires a headless-browser driver, so it always reports the
// capability as unavailable.
type BrowserOpenTool struct{}

func NewBrowserOpenTool() *BrowserOpenTool { return &BrowserOpenTool{} }

func (t *BrowserOpenTool) Name() string { return "browser_open" }

func (t *BrowserOpenTool) Description() string {
	return "Open a URL in a browser session; unavailable in this build."
}

func (t *BrowserOpenTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "URL to open."}
		},
		"required": ["url"]
	}`)
}

func (t *BrowserOpenTool) Execute(args json.RawMessage) models.ToolResult {
	return models.ToolResult{Error: "browser_open is unavailable: no browser driver is configured in this build"}
}
