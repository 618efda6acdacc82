package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
	"github.com/keir/tfmux/internal/core/branch"
)

var (
	mergeTargetFlag string
	mergeYesFlag    bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source>",
	Short: "Merge a session branch into the target branch",
	Long: `Merges a session branch into the target branch (main by default),
publishing the session's changes. The merge runs in the target's checkout
and asks for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

var diffCmd = &cobra.Command{
	Use:   "diff <source>",
	Short: "Show the diff between a branch and the target",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeTargetFlag, "target", branch.MainBranch, "target branch")
	mergeCmd.Flags().BoolVarP(&mergeYesFlag, "yes", "y", false, "skip confirmation")
	diffCmd.Flags().StringVar(&mergeTargetFlag, "target", branch.MainBranch, "target branch")
}

func runMerge(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	if !mergeYesFlag {
		fmt.Printf("Merge %s into %s? [y/N] ", args[0], mergeTargetFlag)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			ui.Info("merge aborted")
			return nil
		}
	}

	result, err := mgr.MergeBranch(cmd.Context(), args[0], mergeTargetFlag)
	if err != nil {
		return err
	}

	ui.Success("merged %s into %s", result.Source, result.Target)
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	result, err := mgr.BranchDiff(cmd.Context(), args[0], mergeTargetFlag)
	if err != nil {
		return err
	}

	if len(result.ChangedFiles) == 0 {
		ui.Info("no differences between %s and %s", result.Source, result.Target)
		return nil
	}

	ui.OutputLine("%d file(s) changed:", len(result.ChangedFiles))
	for _, f := range result.ChangedFiles {
		ui.OutputLine("  %s", f)
	}
	ui.OutputLine("%s", result.Diff)
	return nil
}
