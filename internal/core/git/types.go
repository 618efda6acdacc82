package git

import "time"

// WorktreeInfo represents information about a git worktree
type WorktreeInfo struct {
	Path   string
	Branch string
	Commit string
}

// BranchInfo represents a local branch with its last commit metadata
type BranchInfo struct {
	Name          string
	Hash          string
	CommitMessage string
	CommitDate    time.Time
}
