package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
	"github.com/keir/tfmux/internal/core/branch"
)

var sessionUserFlag string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat session branches",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session branch with its worktree",
	RunE:  runSessionNew,
}

var sessionRemoveCmd = &cobra.Command{
	Use:   "rm <branch>",
	Short: "Delete a session branch and its worktree",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionRemove,
}

var sessionListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List session branches",
	RunE:  runSessionList,
}

func init() {
	sessionNewCmd.Flags().StringVar(&sessionUserFlag, "user", "default", "user namespace for the session branch")

	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionRemoveCmd)
	sessionCmd.AddCommand(sessionListCmd)
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	session, err := mgr.NextSessionNumber(cmd.Context())
	if err != nil {
		return err
	}
	name := branch.SessionBranchName(sessionUserFlag, session)

	result, err := mgr.CreateBranchWithWorktree(cmd.Context(), name)
	if err != nil {
		return err
	}

	ui.Success("created session branch %s", result.Branch)
	ui.OutputLine("  infrastructure: %s", result.InfrastructurePath)
	return nil
}

func runSessionRemove(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	result, err := mgr.DeleteBranchWithWorktree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if result.AlreadyDeleted {
		ui.Info("branch %s does not exist", result.Branch)
	} else {
		ui.Success("deleted session branch %s", result.Branch)
	}
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	sessions, err := mgr.ListChatBranches(cmd.Context())
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.Info("no session branches")
		return nil
	}

	tbl := ui.NewTable("SESSION", "BRANCH", "AGE", "MESSAGE", "WORKTREE")
	for _, s := range sessions {
		worktree := ui.DimStyle.Render("missing")
		if s.WorktreeExists {
			worktree = "ok"
		}
		tbl.AddRow(s.SessionNumber, s.BranchName,
			ui.FormatDuration(time.Since(s.LastCommitDate)), s.LastCommitMessage, worktree)
	}
	tbl.Print()
	return nil
}
