package root

import (
	"github.com/flarebyte/maat-hooks/cmd/maat/doctor"
	"github.com/flarebyte/maat-hooks/cmd/maat/hook"
	"github.com/flarebyte/maat-hooks/cmd/maat/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for maat.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maat",
		Short: "CLI: quality-check pipeline orchestrator for git hook checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(hook.PreCommitCmd)
	cmd.AddCommand(hook.PrePushCmd)
	cmd.AddCommand(hook.CommitMsgCmd)
	cmd.AddCommand(doctor.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
