package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexuscore/internal/daemon"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

func buildStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print configuration summary and daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "workspace: %s\n", cfg.Workspace.Dir)
			fmt.Fprintf(out, "provider:  %s (%s)\n", cfg.Provider.BaseURL, cfg.Provider.Model)
			fmt.Fprintf(out, "gateway:   %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)

			pidPath := filepath.Join(defaultConfigDir(), "daemon.pid")
			running, pid, err := daemon.IsRunning(pidPath)
			if err != nil {
				return err
			}
			if running {
				fmt.Fprintf(out, "daemon:    running (pid %d)\n", pid)
			} else {
				fmt.Fprintln(out, "daemon:    not running")
			}

			state, err := readDaemonState()
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			fmt.Fprintf(out, "state written at: %s (uptime %.0fs)\n", state.WrittenAt.Format("2006-01-02T15:04:05Z07:00"), state.UptimeSeconds)
			for name, entry := range state.Components {
				fmt.Fprintf(out, "  %-10s %-6s restarts=%d\n", name, entry.Status, entry.RestartCount)
			}
			return nil
		},
	}
}

func readDaemonState() (models.DaemonState, error) {
	statePath := filepath.Join(defaultConfigDir(), "daemon_state.json")
	data, err := os.ReadFile(statePath)
	if err != nil {
		return models.DaemonState{}, err
	}
	var state models.DaemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.DaemonState{}, fmt.Errorf("parse daemon state: %w", err)
	}
	return state, nil
}
