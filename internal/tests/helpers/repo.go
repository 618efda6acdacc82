// Package helpers provides shared test fixtures for tfmux tests.
package helpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CreateTestRepo creates a temporary project repository for testing: a git
// repo on branch main with an infrastructure/ directory and an initial
// commit, matching the layout InitRepository produces.
func CreateTestRepo(t *testing.T) string {
	t.Helper()

	// Store original environment and restore after test
	origGitDir := os.Getenv("GIT_DIR")
	origGitWorkTree := os.Getenv("GIT_WORK_TREE")
	origGitIndexFile := os.Getenv("GIT_INDEX_FILE")

	// Clear git environment variables for test isolation
	os.Unsetenv("GIT_DIR")
	os.Unsetenv("GIT_WORK_TREE")
	os.Unsetenv("GIT_INDEX_FILE")

	t.Cleanup(func() {
		if origGitDir != "" {
			os.Setenv("GIT_DIR", origGitDir)
		}
		if origGitWorkTree != "" {
			os.Setenv("GIT_WORK_TREE", origGitWorkTree)
		}
		if origGitIndexFile != "" {
			os.Setenv("GIT_INDEX_FILE", origGitIndexFile)
		}
	})

	// Create the temporary directory in the system temp dir so the test
	// repo is never nested inside an existing repository
	tmpDir, err := os.MkdirTemp(os.TempDir(), "tfmux-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cmd := exec.Command("git", "init", "--initial-branch=main")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		// Fallback for older git versions
		cmd = exec.Command("git", "init")
		cmd.Dir = tmpDir
		output, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("Failed to init git repo: %v, output: %s", err, output)
		}
	}

	ConfigureGitUser(t, tmpDir)

	// Worktrees live under the project root; without this, add -A in the
	// primary checkout would pick them up as embedded repositories
	gitignore := "# Terraform files\n.terraform/\n*.tfstate\n*.tfstate.backup\n*.tfplan\n\n# Worktrees\n.worktrees/\n\n# tfmux metadata\n.tfmux/\n\n# Logs\n*.log\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		t.Fatalf("Failed to create .gitignore: %v", err)
	}

	infraDir := filepath.Join(tmpDir, "infrastructure")
	if err := os.MkdirAll(infraDir, 0o755); err != nil {
		t.Fatalf("Failed to create infrastructure dir: %v", err)
	}
	mainTF := filepath.Join(infraDir, "main.tf")
	if err := os.WriteFile(mainTF, []byte("# tfmux project main configuration\n\n"), 0o644); err != nil {
		t.Fatalf("Failed to create main.tf: %v", err)
	}

	CommitAll(t, tmpDir, "Initial commit")

	cmd = exec.Command("git", "branch", "-M", "main")
	cmd.Dir = tmpDir
	_ = cmd.Run() // Might already be on main

	return tmpDir
}

// ConfigureGitUser sets the commit identity in a repository
func ConfigureGitUser(t *testing.T, dir string) {
	t.Helper()

	for _, args := range [][]string{
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if output, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("Failed to run git %v: %v, output: %s", args, err, output)
		}
	}
}

// WriteFile writes a file relative to the given checkout root, creating
// parent directories as needed.
func WriteFile(t *testing.T, root, relPath, content string) {
	t.Helper()

	path := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", relPath, err)
	}
}

// ReadFile reads a file relative to the given checkout root
func ReadFile(root, relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(root, relPath))
}

// CommitAll stages everything in dir and commits
func CommitAll(t *testing.T, dir, message string) {
	t.Helper()

	for _, args := range [][]string{
		{"add", "-A"},
		{"commit", "-m", message},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if output, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("Failed to run git %v: %v, output: %s", args, err, output)
		}
	}
}
