// Package main provides the CLI entry point for the nexuscore agent
// orchestration kernel: a long-running personal AI-agent runtime that
// drives a tool-calling loop against an OpenAI-compatible provider,
// supervises its own daemon components, and persists a cron schedule.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Fallback logger for errors raised before a subcommand has loaded its
	// config (flag parsing, missing config file). Each subcommand that
	// runs real work replaces this with one built from cfg.Logging.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nexuscore",
		Short: "nexuscore - personal AI-agent orchestration kernel",
		Long: `nexuscore drives a multi-turn tool-calling conversation against an
OpenAI-compatible LLM provider, supervises long-lived components (gateway,
channels, heartbeat, scheduler) with restart back-off, and persists a cron
schedule and conversation memory between runs.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath(), "Path to config file")

	rootCmd.AddCommand(buildAgentCmd())
	rootCmd.AddCommand(buildGatewayCmd())
	rootCmd.AddCommand(buildDaemonCmd())
	rootCmd.AddCommand(buildCronCmd())
	rootCmd.AddCommand(buildStatusCmd())
	rootCmd.AddCommand(buildDoctorCmd())
	rootCmd.AddCommand(buildOutOfScopeCommands()...)

	return rootCmd
}
