package commands

import (
	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
)

var (
	commitBranchFlag  string
	commitMessageFlag string
)

var commitCmd = &cobra.Command{
	Use:   "commit [files...]",
	Short: "Stage and commit changes on a branch",
	Long: `Stages the given files (relative to the branch's infrastructure
root) or all pending changes when no files are given, then commits. A clean
tree is reported as "no changes", not an error.`,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitBranchFlag, "branch", "b", "main", "branch to commit on")
	commitCmd.Flags().StringVarP(&commitMessageFlag, "message", "m", "", "commit message")
	_ = commitCmd.MarkFlagRequired("message")
}

func runCommit(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	result, err := mgr.CommitChanges(cmd.Context(), commitBranchFlag, commitMessageFlag, args)
	if err != nil {
		return err
	}

	if result.NoChanges {
		ui.Info("no changes to commit on %s", result.Branch)
		return nil
	}

	ui.Success("committed %s on %s", result.CommitID[:12], result.Branch)
	return nil
}
