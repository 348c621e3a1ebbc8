package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexuscore/internal/config"
	"github.com/haasonsaas/nexuscore/internal/cron"
	"github.com/haasonsaas/nexuscore/internal/daemon"
	"github.com/haasonsaas/nexuscore/internal/gateway"
)

// buildDaemonCmd runs the full supervisor tree: gateway, channels
// (umbrella no-op per §4.3), heartbeat, and scheduler, with a PID file
// and a 5-second state-file writer.
func buildDaemonCmd() *cobra.Command {
	var (
		host       string
		port       int
		foreground bool
		stopFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the full component supervisor",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := filepath.Join(defaultConfigDir(), "daemon.pid")

			if stopFlag {
				if err := daemon.Stop(pidPath); err != nil {
					return fmt.Errorf("stop daemon: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Gateway.Host = host
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			_ = foreground // this kernel never forks: it always runs in the current process
			slog.SetDefault(cfg.Logging.NewLogger(config.LogModeService))

			if running, pid, err := daemon.IsRunning(pidPath); err != nil {
				return err
			} else if running {
				return fmt.Errorf("daemon already running (pid %d)", pid)
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := os.MkdirAll(defaultConfigDir(), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := daemon.WritePID(pidPath); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer daemon.RemovePID(pidPath)

			cronStore, err := cron.Open(filepath.Join(cfg.Workspace.Dir, "cron", "jobs.db"))
			if err != nil {
				return fmt.Errorf("open cron store: %w", err)
			}
			defer cronStore.Close()
			scheduler := cron.NewScheduler(cronStore)

			registry := daemon.NewRegistry()
			statePath := filepath.Join(defaultConfigDir(), "daemon_state.json")
			writer := daemon.NewStateWriter(registry, statePath)

			srv := gateway.NewServer(cfg.Gateway.Host, cfg.Gateway.Port, registry, slog.Default())

			heartbeatRunner := daemon.NewHeartbeatRunner(cfg.Workspace.Dir, rt.Provider, rt.Registry, rt.Memory, cfg.Heartbeat.Interval)
			heartbeatRunner.Security = rt.Security
			heartbeatRunner.ActiveHours = daemon.ActiveHours{
				Enabled:  cfg.Heartbeat.ActiveHours.Enabled,
				Start:    cfg.Heartbeat.ActiveHours.Start,
				End:      cfg.Heartbeat.ActiveHours.End,
				Timezone: cfg.Heartbeat.ActiveHours.Timezone,
				Days:     cfg.Heartbeat.ActiveHours.Days,
			}

			supervisor := daemon.NewSupervisor(registry, slog.Default())

			components := map[string]daemon.Component{
				"gateway":   srv.Run,
				"channels":  daemon.Noop("channels", slog.Default()),
				"scheduler": schedulerComponent(scheduler),
			}
			if cfg.Heartbeat.Enabled {
				components["heartbeat"] = heartbeatRunner.Run
			} else {
				components["heartbeat"] = daemon.Noop("heartbeat", slog.Default())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go writer.Run(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "daemon started (pid %d)\n", os.Getpid())
			supervisor.Run(ctx, components)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Gateway listen host override")
	cmd.Flags().IntVar(&port, "port", 0, "Gateway listen port override")
	cmd.Flags().BoolVar(&foreground, "foreground", true, "Run in the foreground (always true: this kernel never forks)")
	cmd.Flags().BoolVar(&stopFlag, "stop", false, "Stop a running daemon via its PID file")
	return cmd
}

// schedulerComponent adapts cron.Scheduler's start/stop pair to the
// daemon.Component shape the supervisor expects.
func schedulerComponent(s *cron.Scheduler) daemon.Component {
	return func(ctx context.Context) error {
		s.Start(ctx)
		<-ctx.Done()
		s.Stop()
		return nil
	}
}
