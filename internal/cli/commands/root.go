// Package commands implements the tfmux CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tfmux",
	Short: "Terraform session multiplexer - isolated per-conversation branches backed by git worktrees",
	Long: `tfmux manages Terraform infrastructure-as-code through isolated,
per-conversation git branches backed by worktrees. Each chat session edits
its own checkout while main stays untouched until changes are merged back.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "project ID under the tfmux projects directory")
	rootCmd.PersistentFlags().StringVar(&pathFlag, "path", "", "project path (overrides --project)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(mcpCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
