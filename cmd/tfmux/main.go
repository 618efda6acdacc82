// Command tfmux manages Terraform projects through per-session git branches
// backed by worktrees.
package main

import (
	"fmt"
	"os"

	"github.com/keir/tfmux/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
