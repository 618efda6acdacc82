package branch

import (
	"context"
	"fmt"
)

// CheckSyncStatus computes how far branchName is ahead of and behind
// target. IsInSync means zero commits behind; Diverged means both counts
// are positive.
func (m *Manager) CheckSyncStatus(ctx context.Context, branchName, target string) (*SyncStatus, error) {
	if target == "" {
		target = MainBranch
	}

	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	for _, name := range []string{branchName, target} {
		exists, err := m.gitOps.BranchExists(name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &NotFoundError{Kind: "branch", Name: name}
		}
	}

	// ahead: commits on branch not reachable from target (target..branch)
	ahead, err := m.gitOps.RevListCount(ctx, target, branchName)
	if err != nil {
		return nil, err
	}
	behind, err := m.gitOps.RevListCount(ctx, branchName, target)
	if err != nil {
		return nil, err
	}

	status := &SyncStatus{
		Branch:      branchName,
		Target:      target,
		AheadCount:  ahead,
		BehindCount: behind,
		IsInSync:    behind == 0,
		Diverged:    ahead > 0 && behind > 0,
	}

	switch {
	case ahead == 0 && behind == 0:
		status.Description = fmt.Sprintf("'%s' is up to date with '%s'", branchName, target)
	case ahead > 0 && behind == 0:
		status.Description = fmt.Sprintf("'%s' is ahead by %d commit(s)", branchName, ahead)
	case ahead == 0 && behind > 0:
		status.Description = fmt.Sprintf("'%s' is behind by %d commit(s)", branchName, behind)
	default:
		status.Description = fmt.Sprintf("'%s' has diverged (ahead: %d, behind: %d)", branchName, ahead, behind)
	}

	return status, nil
}

// SyncWithTarget merges target into branchName inside the branch's own
// worktree. A branch already in sync is a no-op. Merge conflicts surface as
// errors with the git diagnostic attached.
func (m *Manager) SyncWithTarget(ctx context.Context, branchName, target string) (*SyncResult, error) {
	if target == "" {
		target = MainBranch
	}

	status, err := m.CheckSyncStatus(ctx, branchName, target)
	if err != nil {
		return nil, err
	}
	if status.IsInSync {
		return &SyncResult{Branch: branchName, Target: target, Action: SyncActionNone}, nil
	}

	dir := m.WorktreeRootPath(branchName)
	if !m.worktreeExists(branchName) {
		return nil, &NotFoundError{Kind: "worktree", Name: branchName}
	}

	err = m.withMergeLock(ctx, func() error {
		return m.gitOps.Merge(ctx, dir, target)
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("synced branch with target", "branch", branchName, "target", target)

	return &SyncResult{Branch: branchName, Target: target, Action: SyncActionMerge}, nil
}

// MergeBranch merges source into target inside the target's worktree. This
// is the publish operation; consent gating belongs to the caller.
func (m *Manager) MergeBranch(ctx context.Context, source, target string) (*MergeResult, error) {
	if target == "" {
		target = MainBranch
	}
	if source == target {
		return nil, ErrMergeIntoSelf
	}

	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	for _, name := range []string{source, target} {
		exists, err := m.gitOps.BranchExists(name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &NotFoundError{Kind: "branch", Name: name}
		}
	}

	dir := m.WorktreeRootPath(target)
	if !m.worktreeExists(target) {
		return nil, &NotFoundError{Kind: "worktree", Name: target}
	}

	err := m.withMergeLock(ctx, func() error {
		return m.gitOps.Merge(ctx, dir, source)
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("merged branch", "source", source, "target", target)

	return &MergeResult{Source: source, Target: target}, nil
}

// BranchDiff returns the unified diff and changed file list between source
// and target.
func (m *Manager) BranchDiff(ctx context.Context, source, target string) (*DiffResult, error) {
	if target == "" {
		target = MainBranch
	}

	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	for _, name := range []string{source, target} {
		exists, err := m.gitOps.BranchExists(name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &NotFoundError{Kind: "branch", Name: name}
		}
	}

	diff, err := m.gitOps.Diff(ctx, source, target)
	if err != nil {
		return nil, err
	}
	files, err := m.gitOps.DiffNames(ctx, source, target)
	if err != nil {
		return nil, err
	}

	return &DiffResult{
		Source:       source,
		Target:       target,
		Diff:         diff,
		ChangedFiles: files,
	}, nil
}
