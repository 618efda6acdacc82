package commands

import (
	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Inspect branches",
}

var branchListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all branches with their infrastructure paths",
	RunE:  runBranchList,
}

func init() {
	branchCmd.AddCommand(branchListCmd)
}

func runBranchList(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	branches, err := mgr.ListBranches(cmd.Context())
	if err != nil {
		return err
	}

	tbl := ui.NewTable("BRANCH", "MAIN", "LAST COMMIT", "MESSAGE", "PATH")
	for _, b := range branches {
		isMain := ""
		if b.IsMain {
			isMain = "*"
		}
		tbl.AddRow(b.BranchName, isMain,
			b.LastCommitDate.Format("2006-01-02 15:04"), b.LastCommitMessage, b.InfrastructurePath)
	}
	tbl.Print()
	return nil
}
