package tools

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestWebSearchToolWithoutBackend(t *testing.T) {
	tool := NewWebSearchTool(nil)
	result := tool.Execute(json.RawMessage(`{"query": "go generics"}`))
	if result.Success {
		t.Fatal("expected failure without a configured backend")
	}
}

func TestWebSearchToolWithBackend(t *testing.T) {
	tool := NewWebSearchTool(func(query string) (string, error) {
		if query == "fail" {
			return "", errors.New("backend error")
		}
		return "results for " + query, nil
	})

	result := tool.Execute(json.RawMessage(`{"query": "go generics"}`))
	if !result.Success || result.Output != "results for go generics" {
		t.Fatalf("unexpected result: %+v", result)
	}

	failResult := tool.Execute(json.RawMessage(`{"query": "fail"}`))
	if failResult.Success {
		t.Fatal("expected backend error to surface as failure")
	}
}

func TestBrowserOpenToolAlwaysUnavailable(t *testing.T) {
	tool := NewBrowserOpenTool()
	result := tool.Execute(json.RawMessage(`{"url": "https://example.com"}`))
	if result.Success {
		t.Fatal("expected browser_open to always report unavailable")
	}
}
