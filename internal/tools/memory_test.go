package tools

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/haasonsaas/nexuscore/internal/memory"
)

func newTestMemoryStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMemoryToolsStoreRecallForget(t *testing.T) {
	store := newTestMemoryStore(t)

	storeTool := NewMemoryStoreTool(store)
	if result := storeTool.Execute(json.RawMessage(`{"key": "name", "value": "ada"}`)); !result.Success {
		t.Fatalf("store failed: %s", result.Error)
	}

	recallTool := NewMemoryRecallTool(store)
	result := recallTool.Execute(json.RawMessage(`{"query": "name"}`))
	if !result.Success {
		t.Fatalf("recall failed: %s", result.Error)
	}

	forgetTool := NewMemoryForgetTool(store)
	forgetResult := forgetTool.Execute(json.RawMessage(`{"key": "name"}`))
	if !forgetResult.Success {
		t.Fatalf("forget failed: %s", forgetResult.Error)
	}

	again := forgetTool.Execute(json.RawMessage(`{"key": "name"}`))
	if again.Success {
		t.Fatal("expected forgetting a missing key to fail")
	}
}

func TestMemoryStoreToolRequiresKey(t *testing.T) {
	store := newTestMemoryStore(t)
	tool := NewMemoryStoreTool(store)
	result := tool.Execute(json.RawMessage(`{"key": "", "value": "x"}`))
	if result.Success {
		t.Fatal("expected missing key to fail")
	}
}

func TestMemoryRecallToolWithoutStore(t *testing.T) {
	tool := NewMemoryRecallTool(nil)
	result := tool.Execute(json.RawMessage(`{}`))
	if result.Success {
		t.Fatal("expected failure with no store configured")
	}
}
