package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexuscore/internal/config"
	"github.com/haasonsaas/nexuscore/internal/daemon"
	"github.com/haasonsaas/nexuscore/internal/gateway"
)

// buildGatewayCmd runs only the gateway component in the foreground,
// useful for standalone health/metrics serving without the full
// supervisor tree.
func buildGatewayCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Run only the HTTP gateway component",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			slog.SetDefault(cfg.Logging.NewLogger(config.LogModeService))

			registry := daemon.NewRegistry()
			srv := gateway.NewServer(cfg.Gateway.Host, cfg.Gateway.Port, registry, slog.Default())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registry.MarkOK("gateway")
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host override")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port override")
	return cmd
}
