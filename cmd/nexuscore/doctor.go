package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// freshnessThreshold returns the staleness threshold for a given
// component's last_ok timestamp, per spec.md §6: the daemon snapshot
// itself is stale after 30s, the scheduler's last_ok after 120s, and any
// channel component's last_ok after 300s. Everything else uses the
// scheduler's threshold as a reasonable default.
func freshnessThreshold(component string) time.Duration {
	switch component {
	case "daemon":
		return 30 * time.Second
	case "channels":
		return 300 * time.Second
	default:
		return 120 * time.Second
	}
}

func buildDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Read the daemon state file and report component freshness",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			state, err := readDaemonState()
			if err != nil {
				fmt.Fprintf(out, "no daemon state file found: %v\n", err)
				return nil
			}

			now := time.Now()
			snapshotAge := now.Sub(state.WrittenAt)
			if snapshotAge > freshnessThreshold("daemon") {
				fmt.Fprintf(out, "STALE  daemon snapshot is %s old (threshold %s)\n", snapshotAge.Round(time.Second), freshnessThreshold("daemon"))
			} else {
				fmt.Fprintf(out, "OK     daemon snapshot is %s old\n", snapshotAge.Round(time.Second))
			}

			for name, entry := range state.Components {
				age := now.Sub(entry.LastOK)
				threshold := freshnessThreshold(name)
				label := "OK"
				if entry.Status != "ok" {
					label = "ERROR"
				} else if age > threshold {
					label = "STALE"
				}
				fmt.Fprintf(out, "%-6s %-10s last_ok %s ago (threshold %s) restarts=%d\n", label, name, age.Round(time.Second), threshold, entry.RestartCount)
				if entry.LastError != "" {
					fmt.Fprintf(out, "         last_error: %s\n", entry.LastError)
				}
			}
			return nil
		},
	}
}
