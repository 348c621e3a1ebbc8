package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexuscore/internal/agent"
	"github.com/haasonsaas/nexuscore/internal/config"
)

// buildAgentCmd builds the "agent" command: a one-shot turn when -m is
// given, otherwise an interactive read-eval-print loop over stdin. Both
// modes drive the exact same RunToolLoop contract.
func buildAgentCmd() *cobra.Command {
	var (
		message     string
		providerOvr string
		model       string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run one or more agent turns against the configured provider",
		Long: `agent starts a conversation with the agent: with -m it runs a single
turn and prints the final answer; without -m it reads lines from stdin,
one turn per line, until EOF or interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.Logging.NewLogger(config.LogModeInteractive))
			if model != "" {
				cfg.Provider.Model = model
			}
			if temperature != 0 {
				cfg.Provider.Temperature = temperature
			}
			_ = providerOvr // reserved: this kernel supports one configured provider at a time

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := agent.Options{
				Model:         cfg.Provider.Model,
				Temperature:   cfg.Provider.Temperature,
				MaxIterations: 10,
				Security:      rt.Security,
			}

			out := cmd.OutOrStdout()

			if message != "" {
				return runOneTurn(ctx, rt, opts, message, out)
			}
			return runInteractive(ctx, rt, opts, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Run a single turn with this message and exit")
	cmd.Flags().StringVar(&providerOvr, "provider", "", "Provider name override (reserved)")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "Sampling temperature override")
	return cmd
}

func runOneTurn(ctx context.Context, rt *kernelRuntime, opts agent.Options, message string, out io.Writer) error {
	text := message
	if rt.Memory != nil {
		if entries, err := rt.Memory.All(); err == nil {
			text = agent.InjectMemoryContext(message, entries)
		}
	}
	history := agent.NewHistory(systemPrompt(), text)
	answer, err := agent.RunToolLoop(ctx, rt.Provider, history, rt.Registry, opts)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintln(out, answer)
	return nil
}

func runInteractive(ctx context.Context, rt *kernelRuntime, opts agent.Options, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := runOneTurn(ctx, rt, opts, line, out); err != nil {
			continue // a failed turn returns control to the prompt, per §7
		}
	}
	return scanner.Err()
}

// systemPrompt is the kernel's default system message. Its exact
// formatting is delegated free design space per spec.md §9; the kernel
// passes this string straight through to the provider without a
// template engine.
func systemPrompt() string {
	return "You are nexuscore, a personal AI agent with access to a small set of tools. Use them when they help answer the user's request."
}
