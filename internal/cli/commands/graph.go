package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/core/tfcode"
)

var (
	graphBranchFlag string
	graphJSONFlag   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show blocks and dependencies for a branch",
	Long: `Parses the branch's Terraform configuration and prints every block
with its address plus the dependency edges between blocks. With --json the
raw summary structure is printed instead.`,
	RunE: runGraph,
}

var compareCmd = &cobra.Command{
	Use:   "compare <source>",
	Short: "Compare parsed configuration between a branch and the target",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	graphCmd.Flags().StringVarP(&graphBranchFlag, "branch", "b", branch.MainBranch, "branch to analyze")
	graphCmd.Flags().BoolVar(&graphJSONFlag, "json", false, "output JSON")
	compareCmd.Flags().StringVar(&mergeTargetFlag, "target", branch.MainBranch, "target branch")
}

func runGraph(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	snapshot, err := tfcode.ParseDirectory(mgr.InfrastructurePath(graphBranchFlag))
	if err != nil {
		return err
	}
	summary := tfcode.Summarize(snapshot)

	if graphJSONFlag {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		ui.OutputLine("%s", data)
		return nil
	}

	files := make([]string, 0, len(summary.Files))
	for f := range summary.Files {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		ui.OutputLine("%s", ui.BoldStyle.Render(f))
		for _, b := range summary.Files[f] {
			label := b.Address
			if label == "" {
				label = fmt.Sprintf("%s (%s)", b.Type, b.LocalNames)
			}
			ui.OutputLine("  %s", label)
		}
	}

	if len(summary.Dependencies) > 0 {
		ui.OutputLine("\n%s", ui.BoldStyle.Render("dependencies"))
		for _, d := range summary.Dependencies {
			line := fmt.Sprintf("  %s -> %s (%s)", d.From, d.To, d.Type)
			if d.Attribute != "" {
				line += " ." + d.Attribute
			}
			ui.OutputLine("%s", line)
		}
	}

	for _, e := range summary.ParseErrors {
		ui.Warning("parse error in %s: %s", e.File, e.Message)
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	mgr, err := branchManager()
	if err != nil {
		return err
	}

	targetSnapshot, err := tfcode.ParseDirectory(mgr.InfrastructurePath(mergeTargetFlag))
	if err != nil {
		return err
	}
	sourceSnapshot, err := tfcode.ParseDirectory(mgr.InfrastructurePath(args[0]))
	if err != nil {
		return err
	}

	comparison := tfcode.Compare(targetSnapshot, sourceSnapshot)

	ui.OutputLine("%d added, %d deleted, %d modified, %d unchanged",
		comparison.Summary.Added, comparison.Summary.Deleted,
		comparison.Summary.Modified, comparison.Summary.NoChange)

	addresses := make([]string, 0, len(comparison.Changes))
	for addr := range comparison.Changes {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	for _, addr := range addresses {
		change := comparison.Changes[addr]
		if change.ChangeType == tfcode.ChangeNone {
			continue
		}
		ui.OutputLine("  %-10s %s", change.ChangeType, addr)
	}
	return nil
}
