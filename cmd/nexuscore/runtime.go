package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/haasonsaas/nexuscore/internal/agent"
	"github.com/haasonsaas/nexuscore/internal/config"
	"github.com/haasonsaas/nexuscore/internal/memory"
	"github.com/haasonsaas/nexuscore/internal/providers"
	"github.com/haasonsaas/nexuscore/internal/security"
	"github.com/haasonsaas/nexuscore/internal/tools"
)

// kernelRuntime bundles the collaborators every CLI entry point that
// actually runs a tool loop needs: the resilient provider, the security
// policy gating every tool call, the memory backend, and a registry
// pre-loaded with the required built-in tools.
type kernelRuntime struct {
	Config   *config.Config
	Provider *providers.Resilient
	Security *security.Policy
	Memory   *memory.Store
	Registry *agent.Registry
}

// buildRuntime wires one kernelRuntime from cfg: creates the workspace
// directory, opens the sqlite-backed memory store under it, and
// registers the six required built-in tools (plus the two optional
// stubs) gated by the configured security policy.
func buildRuntime(cfg *config.Config) (*kernelRuntime, error) {
	if err := os.MkdirAll(cfg.Workspace.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}

	policy := cfg.SecurityPolicy()

	memPath := filepath.Join(cfg.Workspace.Dir, "memory", "memory.db")
	if err := os.MkdirAll(filepath.Dir(memPath), 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	memStore, err := memory.Open(memPath)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	registry := agent.NewRegistry()
	builtins := []agent.Tool{
		tools.NewShellTool(policy),
		tools.NewFileReadTool(policy),
		tools.NewFileWriteTool(policy),
		tools.NewMemoryStoreTool(memStore),
		tools.NewMemoryRecallTool(memStore),
		tools.NewMemoryForgetTool(memStore),
		tools.NewWebSearchTool(nil),
		tools.NewBrowserOpenTool(),
	}
	for _, t := range builtins {
		if err := registry.Register(t); err != nil {
			memStore.Close()
			return nil, fmt.Errorf("register tool %s: %w", t.Name(), err)
		}
	}

	return &kernelRuntime{
		Config:   cfg,
		Provider: cfg.BuildProvider(),
		Security: policy,
		Memory:   memStore,
		Registry: registry,
	}, nil
}

func (r *kernelRuntime) Close() error {
	if r.Memory != nil {
		return r.Memory.Close()
	}
	return nil
}
