package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// notPartOfKernel is the error every out-of-scope command's RunE
// returns. Per spec.md §1 these subcommands' internals (the onboarding
// wizard, terminal UI, host service manager, channel transports,
// integrations catalogue, skills marketplace, and the openclaw migrator)
// are external collaborators the kernel consumes through capability
// interfaces, not something this package reimplements. The commands
// exist so the CLI surface named in §6 is complete.
func notPartOfKernel(name string) error {
	return fmt.Errorf("%s: not part of the agent orchestration kernel; this build only implements agent/gateway/daemon/cron/status/doctor", name)
}

// buildOutOfScopeCommands returns every cobra command named in spec.md
// §6 whose implementation is an external collaborator out of this
// kernel's scope.
func buildOutOfScopeCommands() []*cobra.Command {
	leaf := func(use, short string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return notPartOfKernel(use)
			},
		}
	}

	onboard := leaf("onboard", "Write config and workspace scaffolding (external collaborator)")
	onboard.Flags().Bool("interactive", false, "Run the interactive onboarding wizard")
	onboard.Flags().Bool("channels-only", false, "Only configure messaging channels")

	tui := leaf("tui", "Launch the terminal UI (external collaborator)")

	service := &cobra.Command{Use: "service", Short: "Host service manager integration (external collaborator)"}
	for _, sub := range []string{"install", "start", "stop", "status", "uninstall"} {
		service.AddCommand(leaf(sub, "Host service "+sub))
	}

	channel := &cobra.Command{Use: "channel", Short: "Messaging channel transports (external collaborator)"}
	channel.AddCommand(leaf("list", "List configured channels"))
	channel.AddCommand(leaf("start", "Start channel listeners"))
	channel.AddCommand(leaf("doctor", "Diagnose channel connectivity"))
	channel.AddCommand(leaf("add TYPE JSON", "Add a channel"))
	channel.AddCommand(leaf("remove NAME", "Remove a channel"))

	integrations := &cobra.Command{Use: "integrations", Short: "Integrations catalogue (external collaborator)"}
	integrations.AddCommand(leaf("info NAME", "Show integration info"))

	skills := &cobra.Command{Use: "skills", Short: "Skills marketplace (external collaborator)"}
	skills.AddCommand(leaf("list", "List installed skills"))
	skills.AddCommand(leaf("install SRC", "Install a skill"))
	skills.AddCommand(leaf("remove NAME", "Remove a skill"))

	migrate := &cobra.Command{Use: "migrate", Short: "Migration tooling (external collaborator)"}
	openclaw := leaf("openclaw", "Migrate an openclaw workspace")
	openclaw.Flags().String("source", "", "Source path")
	openclaw.Flags().Bool("dry-run", false, "Report what would change without writing")
	migrate.AddCommand(openclaw)

	return []*cobra.Command{onboard, tui, service, channel, integrations, skills, migrate}
}
