package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "workspace:\n  dir: /tmp/ws\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base url, got %q", cfg.Provider.BaseURL)
	}
	if cfg.Security.Autonomy != "medium" {
		t.Errorf("expected default autonomy medium, got %q", cfg.Security.Autonomy)
	}
	if cfg.Gateway.Port != 8089 {
		t.Errorf("expected default gateway port 8089, got %d", cfg.Gateway.Port)
	}
	if cfg.Provider.MaxAttempts != 3 {
		t.Errorf("expected default max_attempts 3, got %d", cfg.Provider.MaxAttempts)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("NEXUSCORE_TEST_API_KEY", "secret-value")
	path := writeConfig(t, "provider:\n  api_key: \"${NEXUSCORE_TEST_API_KEY}\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.APIKey != "secret-value" {
		t.Errorf("expected expanded env var, got %q", cfg.Provider.APIKey)
	}
}

func TestLoadRejectsInvalidAutonomy(t *testing.T) {
	path := writeConfig(t, "security:\n  autonomy: reckless\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected invalid autonomy to be rejected")
	}
}

func TestLoadRejectsCustomAuthWithoutHeader(t *testing.T) {
	path := writeConfig(t, "provider:\n  auth_scheme: custom\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected missing custom_header to be rejected")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "nonexistent_key: true\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown top-level field to be rejected")
	}
}

func TestLoadRejectsMultiDocument(t *testing.T) {
	path := writeConfig(t, "workspace:\n  dir: /tmp/a\n---\nworkspace:\n  dir: /tmp/b\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected multi-document config to be rejected")
	}
}

func TestSecurityPolicyReflectsConfig(t *testing.T) {
	path := writeConfig(t, "workspace:\n  dir: /tmp/ws\nsecurity:\n  autonomy: high\n  allowed_commands: [\"ls\", \"cat\"]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	policy := cfg.SecurityPolicy()
	if policy.MaxActionsPerHour != 500 {
		t.Errorf("expected high autonomy budget 500, got %d", policy.MaxActionsPerHour)
	}
	if len(policy.AllowedCommands) != 2 {
		t.Errorf("expected allowed commands to carry through, got %v", policy.AllowedCommands)
	}
}
