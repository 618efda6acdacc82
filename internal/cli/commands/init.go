package commands

import (
	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/cli/ui"
	"github.com/keir/tfmux/internal/core/project"
)

var initNameFlag string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a tfmux project repository",
	Long: `Initializes the project's git repository with the standard layout:
an infrastructure/ directory with scaffold files, a modules/ directory, a
.gitignore excluding state and worktree paths, and an initial commit on main.

With --name a new project directory is created under the tfmux projects
base directory; otherwise the current (or --path) directory is used.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initNameFlag, "name", "", "create a new project with this name")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := ""
	if initNameFlag != "" {
		baseDir, err := project.DefaultBaseDir()
		if err != nil {
			return err
		}
		info, err := project.NewManager(baseDir).Create(initNameFlag)
		if err != nil {
			return err
		}
		ui.Info("created project %s (%s)", info.Name, info.ID)
		path = info.Path
		pathFlag = path
	}

	mgr, err := branchManager()
	if err != nil {
		return err
	}

	result, err := mgr.InitRepository(cmd.Context())
	if err != nil {
		return err
	}

	if result.AlreadyExists {
		ui.Info("repository already initialized at %s", result.MainPath)
	} else {
		ui.Success("repository initialized, infrastructure at %s", result.MainPath)
	}
	return nil
}
