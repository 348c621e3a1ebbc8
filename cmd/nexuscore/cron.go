package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexuscore/internal/config"
	"github.com/haasonsaas/nexuscore/internal/cron"
)

func buildCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Manage scheduled cron jobs",
	}
	cmd.AddCommand(buildCronListCmd())
	cmd.AddCommand(buildCronAddCmd())
	cmd.AddCommand(buildCronRemoveCmd())
	cmd.AddCommand(buildCronHistoryCmd())
	return cmd
}

func openCronStore(cmd *cobra.Command) (*cron.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(cfg.Logging.NewLogger(config.LogModeService))
	store, err := cron.Open(filepath.Join(cfg.Workspace.Dir, "cron", "jobs.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open cron store: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func buildCronListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled jobs, ordered by next run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openCronStore(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			jobs, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "no scheduled jobs")
				return nil
			}
			for _, j := range jobs {
				status := j.LastStatus
				if status == "" {
					status = "-"
				}
				fmt.Fprintf(out, "%s  %-20s  next=%s  last=%s  %q\n",
					j.ID, j.Expression, j.NextRun.Format("2006-01-02T15:04:05Z07:00"), status, j.Command)
			}
			return nil
		},
	}
}

func buildCronAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add EXPR CMD",
		Short: "Add a cron job",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openCronStore(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			expr := args[0]
			command := strings.Join(args[1:], " ")
			scheduler := cron.NewScheduler(store)
			job, err := scheduler.Add(expr, command)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added job %s, next run %s\n", job.ID, job.NextRun.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}
}

func buildCronRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a cron job by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openCronStore(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			removed, err := store.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no job with id %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed job %s\n", args[0])
			return nil
		},
	}
}

func buildCronHistoryCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history JOB_ID",
		Short: "Show a job's execution history, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openCronStore(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			execs, err := store.History(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range execs {
				fmt.Fprintf(out, "%s  status=%s  duration=%s\n", e.StartedAt.Format("2006-01-02T15:04:05Z07:00"), e.Status, e.Duration)
			}
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "Maximum number of executions to show")
	return c
}
