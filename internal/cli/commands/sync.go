package commands

import (
	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
	"github.com/keir/tfmux/internal/core/branch"
)

var targetFlag string

var statusCmd = &cobra.Command{
	Use:   "status <branch>",
	Short: "Show how a branch relates to its target",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var syncCmd = &cobra.Command{
	Use:   "sync <branch>",
	Short: "Merge the target branch into a session branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func init() {
	statusCmd.Flags().StringVar(&targetFlag, "target", branch.MainBranch, "target branch")
	syncCmd.Flags().StringVar(&targetFlag, "target", branch.MainBranch, "target branch")
}

func runStatus(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	status, err := mgr.CheckSyncStatus(cmd.Context(), args[0], targetFlag)
	if err != nil {
		return err
	}

	ui.OutputLine("%s", status.Description)
	if status.Diverged {
		ui.Warning("branches have diverged; run 'tfmux sync %s' to merge %s in", status.Branch, status.Target)
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	result, err := mgr.SyncWithTarget(cmd.Context(), args[0], targetFlag)
	if err != nil {
		return err
	}

	if result.Action == branch.SyncActionNone {
		ui.Info("branch %s is already in sync with %s", result.Branch, result.Target)
	} else {
		ui.Success("merged %s into %s", result.Target, result.Branch)
	}
	return nil
}
