// Package config loads the kernel's YAML configuration file, grounded on
// the teacher's internal/config/loader.go approach: env-var expansion,
// strict single-document decoding, then defaulting and validation. The
// teacher's json5/$include extensions are dropped; this kernel's config
// shape is flat enough not to need them.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haasonsaas/nexuscore/internal/providers"
	"github.com/haasonsaas/nexuscore/internal/security"
)

// Config is the root configuration for the nexuscore CLI.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Provider  ProviderConfig  `yaml:"provider"`
	Security  SecurityConfig  `yaml:"security"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WorkspaceConfig locates the directory the agent's tools, memory store,
// and cron database are confined to.
type WorkspaceConfig struct {
	Dir string `yaml:"dir"`
}

// ProviderConfig configures the OpenAI-compatible chat provider.
type ProviderConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	AuthScheme     string        `yaml:"auth_scheme"` // "bearer" | "x-api-key" | "custom"
	CustomHeader   string        `yaml:"custom_header"`
	Model          string        `yaml:"model"`
	Temperature    float64       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxAttempts and retry back-off bounds for the resilience wrapper.
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// SecurityConfig configures the tool-call gate.
type SecurityConfig struct {
	// Autonomy is "low", "medium", or "high"; see security.FromConfig.
	Autonomy        string   `yaml:"autonomy"`
	AllowedCommands []string `yaml:"allowed_commands"`
}

// GatewayConfig configures the supervised HTTP health/metrics surface.
type GatewayConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// HeartbeatConfig configures the periodic HEARTBEAT.md runner.
type HeartbeatConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Interval    time.Duration     `yaml:"interval"`
	ActiveHours ActiveHoursConfig `yaml:"active_hours"`
}

// ActiveHoursConfig restricts heartbeat ticks to a time-of-day window,
// carried forward from the teacher's
// internal/agents/heartbeat.ActiveHoursConfig (spec.md has no opinion on
// this; SPEC_FULL.md keeps it as a cheap enrichment the original had).
type ActiveHoursConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Start    string `yaml:"start"` // "HH:MM"
	End      string `yaml:"end"`   // "HH:MM", "24:00" allowed
	Timezone string `yaml:"timezone"`
	Days     []int  `yaml:"days"` // 0=Sunday .. 6=Saturday; empty means every day
}

// LoggingConfig configures the process-wide slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "text" | "json" | "auto"
}

// LogMode distinguishes an interactive session (text handler, matching
// the teacher's terminal-facing commands) from a long-running service
// (JSON handler, matching the teacher's daemon/gateway startup).
type LogMode string

const (
	LogModeInteractive LogMode = "interactive"
	LogModeService     LogMode = "service"
)

// NewLogger builds the process-wide slog.Logger for mode from the
// logging config: an explicit "text"/"json" format always wins, and
// "auto" (the default) picks text for interactive sessions and JSON for
// service-mode ones, per the teacher's own split between terminal and
// daemon output.
func (l LoggingConfig) NewLogger(mode LogMode) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	format := strings.ToLower(l.Format)
	if format == "" || format == "auto" {
		if mode == LogModeInteractive {
			format = "text"
		} else {
			format = "json"
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Load reads path, expands environment variables, strictly decodes a
// single YAML document, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := decoder.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("config: %s must contain a single YAML document", path)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Workspace.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.Workspace.Dir = home + "/.nexuscore/workspace"
	}

	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Provider.AuthScheme == "" {
		cfg.Provider.AuthScheme = string(providers.AuthBearer)
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gpt-4o-mini"
	}
	if cfg.Provider.Temperature == 0 {
		cfg.Provider.Temperature = 0.7
	}
	if cfg.Provider.RequestTimeout == 0 {
		cfg.Provider.RequestTimeout = 120 * time.Second
	}
	if cfg.Provider.MaxAttempts == 0 {
		cfg.Provider.MaxAttempts = 3
	}
	if cfg.Provider.InitialBackoff == 0 {
		cfg.Provider.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.Provider.MaxBackoff == 0 {
		cfg.Provider.MaxBackoff = 10 * time.Second
	}

	if cfg.Security.Autonomy == "" {
		cfg.Security.Autonomy = string(security.AutonomyMedium)
	}

	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 8089
	}

	if cfg.Heartbeat.Interval == 0 {
		cfg.Heartbeat.Interval = 5 * time.Minute
	}
	if cfg.Heartbeat.ActiveHours.Timezone == "" {
		cfg.Heartbeat.ActiveHours.Timezone = "local"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}
}

func validate(cfg *Config) error {
	var issues []string

	switch security.Autonomy(cfg.Security.Autonomy) {
	case security.AutonomyLow, security.AutonomyMedium, security.AutonomyHigh:
	default:
		issues = append(issues, fmt.Sprintf("security.autonomy must be low, medium, or high, got %q", cfg.Security.Autonomy))
	}

	switch providers.AuthScheme(cfg.Provider.AuthScheme) {
	case providers.AuthBearer, providers.AuthAPIKeyHeader, providers.AuthCustomHeader:
	default:
		issues = append(issues, fmt.Sprintf("provider.auth_scheme must be bearer, x-api-key, or custom, got %q", cfg.Provider.AuthScheme))
	}
	if cfg.Provider.AuthScheme == string(providers.AuthCustomHeader) && strings.TrimSpace(cfg.Provider.CustomHeader) == "" {
		issues = append(issues, "provider.custom_header is required when provider.auth_scheme is custom")
	}

	if cfg.Provider.MaxAttempts < 1 {
		issues = append(issues, "provider.max_attempts must be >= 1")
	}

	if cfg.Heartbeat.ActiveHours.Enabled {
		if !validClockTime(cfg.Heartbeat.ActiveHours.Start) {
			issues = append(issues, "heartbeat.active_hours.start must be HH:MM")
		}
		if !validClockTime(cfg.Heartbeat.ActiveHours.End) {
			issues = append(issues, "heartbeat.active_hours.end must be HH:MM (or 24:00)")
		}
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json", "auto":
	default:
		issues = append(issues, fmt.Sprintf("logging.format must be text, json, or auto, got %q", cfg.Logging.Format))
	}

	if len(issues) > 0 {
		return fmt.Errorf("config: invalid configuration:\n  - %s", strings.Join(issues, "\n  - "))
	}
	return nil
}

func validClockTime(v string) bool {
	if v == "24:00" {
		return true
	}
	var h, m int
	if _, err := fmt.Sscanf(v, "%2d:%2d", &h, &m); err != nil {
		return false
	}
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

// SecurityPolicy builds a *security.Policy from the configured autonomy
// level and workspace directory.
func (c *Config) SecurityPolicy() *security.Policy {
	p := security.FromConfig(security.Autonomy(c.Security.Autonomy), c.Workspace.Dir)
	p.AllowedCommands = c.Security.AllowedCommands
	return p
}

// BuildProvider builds the resilient, OpenAI-compatible chat provider
// this configuration describes.
func (c *Config) BuildProvider() *providers.Resilient {
	wire := providers.NewWireProvider(c.Provider.BaseURL, c.Provider.APIKey, providers.AuthScheme(c.Provider.AuthScheme))
	wire.CustomHeader = c.Provider.CustomHeader
	wire.RequestTimeout = c.Provider.RequestTimeout
	wire.HTTPClient.Timeout = c.Provider.RequestTimeout

	resilient := providers.NewResilient(wire)
	resilient.MaxAttempts = c.Provider.MaxAttempts
	resilient.Policy.Initial = c.Provider.InitialBackoff
	resilient.Policy.Max = c.Provider.MaxBackoff
	return resilient
}
