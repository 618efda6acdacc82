package commands

import (
	"fmt"
	"os"

	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/core/logger"
	"github.com/keir/tfmux/internal/core/project"
)

var (
	projectFlag string
	pathFlag    string
)

// projectPath resolves the project directory from flags. --path wins; with
// --project the directory is looked up under the projects base dir.
func projectPath() (string, error) {
	if pathFlag != "" {
		return pathFlag, nil
	}
	if projectFlag != "" {
		baseDir, err := project.DefaultBaseDir()
		if err != nil {
			return "", err
		}
		pm := project.NewManager(baseDir)
		if !pm.Exists(projectFlag) {
			return "", fmt.Errorf("project not found: %s", projectFlag)
		}
		return pm.Path(projectFlag), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return cwd, nil
}

// branchManager builds the branch manager for the resolved project
func branchManager() (*branch.Manager, error) {
	path, err := projectPath()
	if err != nil {
		return nil, err
	}
	return branch.NewManager(path, logger.Default()), nil
}
