// Package git provides the git operations tfmux is built on. Read-only
// queries go through go-git; worktree, merge and staging operations shell out
// to the git binary because go-git's worktree support is incomplete.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Operations provides git operations rooted at a repository path
type Operations struct {
	repoPath string
}

// NewOperations creates a new git operations instance
func NewOperations(repoPath string) *Operations {
	return &Operations{
		repoPath: repoPath,
	}
}

// RepoPath returns the repository root path
func (o *Operations) RepoPath() string {
	return o.repoPath
}

// IsGitRepository checks if the path is a git repository
func (o *Operations) IsGitRepository() bool {
	_, err := git.PlainOpen(o.repoPath)
	return err == nil
}

// run executes a git command in dir and returns its combined output
func (o *Operations) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// Init initializes a new repository at the root path
func (o *Operations) Init(ctx context.Context) error {
	if _, err := o.run(ctx, o.repoPath, "init"); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	return nil
}

// CurrentBranch returns the branch HEAD points at
func (o *Operations) CurrentBranch() (string, error) {
	repo, err := git.PlainOpen(o.repoPath)
	if err != nil {
		return "", ErrNotRepository
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Name().Short(), nil
}

// RenameBranch renames a branch (used to normalize the default branch name)
func (o *Operations) RenameBranch(ctx context.Context, from, to string) error {
	if _, err := o.run(ctx, o.repoPath, "branch", "-m", from, to); err != nil {
		return fmt.Errorf("failed to rename branch %s to %s: %w", from, to, err)
	}
	return nil
}

// BranchExists checks whether a local branch exists
func (o *Operations) BranchExists(branch string) (bool, error) {
	repo, err := git.PlainOpen(o.repoPath)
	if err != nil {
		return false, ErrNotRepository
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	return true, nil
}

// Branches lists all local branches with their last commit metadata,
// sorted by name.
func (o *Operations) Branches() ([]*BranchInfo, error) {
	repo, err := git.PlainOpen(o.repoPath)
	if err != nil {
		return nil, ErrNotRepository
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []*BranchInfo
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		info := &BranchInfo{
			Name: ref.Name().Short(),
			Hash: ref.Hash().String(),
		}
		if commit, err := repo.CommitObject(ref.Hash()); err == nil {
			info.CommitMessage = strings.TrimSpace(commit.Message)
			info.CommitDate = commit.Committer.When
		}
		branches = append(branches, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

// BranchInfo returns the last commit metadata for one branch
func (o *Operations) BranchInfo(branch string) (*BranchInfo, error) {
	repo, err := git.PlainOpen(o.repoPath)
	if err != nil {
		return nil, ErrNotRepository
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}

	info := &BranchInfo{
		Name: branch,
		Hash: ref.Hash().String(),
	}
	if commit, err := repo.CommitObject(ref.Hash()); err == nil {
		info.CommitMessage = strings.TrimSpace(commit.Message)
		info.CommitDate = commit.Committer.When
	}
	return info, nil
}

// CreateBranch creates a new branch pointing at base's tip
func (o *Operations) CreateBranch(ctx context.Context, branch, base string) error {
	if _, err := o.run(ctx, o.repoPath, "branch", branch, base); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch force-deletes a branch ref
func (o *Operations) DeleteBranch(ctx context.Context, branch string) error {
	if _, err := o.run(ctx, o.repoPath, "branch", "-D", branch); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branch, err)
	}
	return nil
}

// AddWorktree creates a worktree at path checked out to branch.
// Worktree operations use the git command because go-git does not
// support linked worktrees.
func (o *Operations) AddWorktree(ctx context.Context, path, branch string) error {
	if _, err := o.run(ctx, o.repoPath, "worktree", "add", path, branch); err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	return nil
}

// RemoveWorktree removes a worktree
func (o *Operations) RemoveWorktree(ctx context.Context, path string) error {
	if _, err := o.run(ctx, o.repoPath, "worktree", "remove", path, "--force"); err != nil {
		return fmt.Errorf("failed to remove worktree: %w", err)
	}
	return nil
}

// PruneWorktrees removes stale worktree administrative data
func (o *Operations) PruneWorktrees(ctx context.Context) error {
	if _, err := o.run(ctx, o.repoPath, "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// ListWorktrees lists all worktrees in the repository
func (o *Operations) ListWorktrees(ctx context.Context) ([]*WorktreeInfo, error) {
	output, err := o.run(ctx, o.repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList([]byte(output)), nil
}

// RevListCount returns the number of commits reachable from 'to' but not
// from 'from' (git rev-list --count from..to).
func (o *Operations) RevListCount(ctx context.Context, from, to string) (int, error) {
	output, err := o.run(ctx, o.repoPath, "rev-list", "--count", fmt.Sprintf("%s..%s", from, to))
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, fmt.Errorf("failed to parse rev-list output %q: %w", output, err)
	}
	return count, nil
}

// Merge merges branch into the branch checked out in dir
func (o *Operations) Merge(ctx context.Context, dir, branch string) error {
	if _, err := o.run(ctx, dir, "merge", branch); err != nil {
		return fmt.Errorf("failed to merge %s: %w", branch, err)
	}
	return nil
}

// Diff returns the unified diff target..source
func (o *Operations) Diff(ctx context.Context, source, target string) (string, error) {
	output, err := o.run(ctx, o.repoPath, "diff", fmt.Sprintf("%s..%s", target, source))
	if err != nil {
		return "", err
	}
	return output, nil
}

// DiffNames returns the list of file paths changed between target and source
func (o *Operations) DiffNames(ctx context.Context, source, target string) ([]string, error) {
	output, err := o.run(ctx, o.repoPath, "diff", "--name-only", fmt.Sprintf("%s..%s", target, source))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// StageAll stages all changes in dir, including untracked files
func (o *Operations) StageAll(ctx context.Context, dir string) error {
	if _, err := o.run(ctx, dir, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// StagePaths stages specific paths in dir
func (o *Operations) StagePaths(ctx context.Context, dir string, paths []string) error {
	for _, path := range paths {
		if _, err := o.run(ctx, dir, "add", path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}
	return nil
}

// HasChanges reports whether dir has staged, unstaged or untracked changes
func (o *Operations) HasChanges(ctx context.Context, dir string) (bool, error) {
	output, err := o.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// Commit records a commit in dir and returns the new commit hash
func (o *Operations) Commit(ctx context.Context, dir, message string) (string, error) {
	if _, err := o.run(ctx, dir, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	hash, err := o.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(hash), nil
}

// parseWorktreeList parses the output of 'git worktree list --porcelain'
func parseWorktreeList(output []byte) []*WorktreeInfo {
	var worktrees []*WorktreeInfo
	lines := bytes.Split(output, []byte("\n"))

	var current *WorktreeInfo
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if current != nil {
				worktrees = append(worktrees, current)
				current = nil
			}
			continue
		}

		parts := bytes.SplitN(line, []byte(" "), 2)
		if len(parts) != 2 {
			continue
		}

		key := string(parts[0])
		value := string(parts[1])

		switch key {
		case "worktree":
			current = &WorktreeInfo{Path: value}
		case "branch":
			if current != nil {
				current.Branch = strings.TrimPrefix(value, "refs/heads/")
			}
		case "HEAD":
			if current != nil {
				current.Commit = value
			}
		}
	}

	if current != nil {
		worktrees = append(worktrees, current)
	}

	return worktrees
}
