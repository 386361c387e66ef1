// Package hook implements the git hook subcommands: pre-commit, pre-push and
// commit-msg. Each binds one phase to a changed-file query and hands the
// effective tool list to the execution engine.
package hook

import (
	"github.com/flarebyte/maat-hooks/internal/gitindex"
	"github.com/flarebyte/maat-hooks/internal/tool"
	"github.com/spf13/cobra"
)

// PreCommitCmd runs the staged-file quality tools.
var PreCommitCmd = &cobra.Command{
	Use:           "pre-commit",
	Short:         "Run quality tools over the staged files",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(tool.PreCommit, func(repo *gitindex.Repo) ([]string, error) {
			return repo.StagedFiles()
		})
	},
}

// PrePushCmd runs tests and whole-project analyses before a push.
var PrePushCmd = &cobra.Command{
	Use:           "pre-push",
	Short:         "Run tests and project-wide checks before pushing",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(tool.PrePush, func(repo *gitindex.Repo) ([]string, error) {
			return repo.ChangedSinceUpstream()
		})
	},
}

// CommitMsgCmd validates the commit message file git hands to the hook.
var CommitMsgCmd = &cobra.Command{
	Use:           "commit-msg <file>",
	Short:         "Validate the commit message",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		msgFile := args[0]
		return runPhase(tool.CommitMsg, func(*gitindex.Repo) ([]string, error) {
			return []string{msgFile}, nil
		})
	},
}
