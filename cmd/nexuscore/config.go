package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexuscore/internal/config"
)

// defaultConfigPath returns ~/.nexuscore/config.yaml, falling back to a
// relative path when the home directory cannot be resolved.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nexuscore.yaml"
	}
	return filepath.Join(home, ".nexuscore", "config.yaml")
}

// defaultConfigDir returns the directory holding the PID file, state
// file, and config file, per §6.
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".nexuscore")
}

// loadConfig reads the --config flag from cmd (or its nearest persistent
// parent) and loads the configuration it names.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
