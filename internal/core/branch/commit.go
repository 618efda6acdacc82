package branch

import (
	"context"
	"fmt"
	"path/filepath"
)

// CommitChanges stages and commits pending changes on a branch. When files
// is non-empty each entry is resolved relative to the branch's
// infrastructure root; otherwise all pending changes are staged. A clean
// tree yields a successful result with NoChanges set and no commit hash,
// so callers can tell "nothing to do" from an actual new revision.
func (m *Manager) CommitChanges(ctx context.Context, branchName, message string, files []string) (*CommitResult, error) {
	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	dir := m.WorktreeRootPath(branchName)
	if !m.worktreeExists(branchName) {
		return nil, &NotFoundError{Kind: "worktree", Name: branchName}
	}

	if len(files) > 0 {
		infraPath := m.InfrastructurePath(branchName)
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, filepath.Join(infraPath, f))
		}
		if err := m.gitOps.StagePaths(ctx, dir, paths); err != nil {
			return nil, err
		}
	} else {
		if err := m.gitOps.StageAll(ctx, dir); err != nil {
			return nil, err
		}
	}

	dirty, err := m.gitOps.HasChanges(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !dirty {
		return &CommitResult{Branch: branchName, NoChanges: true}, nil
	}

	hash, err := m.gitOps.Commit(ctx, dir, message)
	if err != nil {
		return nil, fmt.Errorf("failed to commit on %s: %w", branchName, err)
	}

	result := &CommitResult{
		CommitID:      hash,
		CommitMessage: message,
		Branch:        branchName,
		NoChanges:     false,
	}
	if info, err := m.gitOps.BranchInfo(branchName); err == nil {
		result.CommitDate = info.CommitDate
	}

	m.log.Info("committed changes", "branch", branchName, "commit", hash)

	return result, nil
}
