package branch

import "time"

const (
	// MainBranch is the production branch. It always maps to the primary
	// working directory and is never deleted.
	MainBranch = "main"

	// WorktreesDir is the directory under the project root holding one
	// worktree per session branch.
	WorktreesDir = ".worktrees"

	// SessionBranchPrefix namespaces all chat session branches
	// (user/<user>/<n>).
	SessionBranchPrefix = "user/"

	// InfrastructureDir holds the Terraform configuration inside a checkout
	InfrastructureDir = "infrastructure"

	// ModulesDir holds local Terraform modules inside a checkout
	ModulesDir = "modules"
)

// InitResult is the outcome of repository initialization
type InitResult struct {
	AlreadyExists bool   `json:"already_exists"`
	MainPath      string `json:"main_path"`
}

// CreateResult is the outcome of creating a branch with its worktree
type CreateResult struct {
	Branch             string `json:"branch"`
	AlreadyExists      bool   `json:"already_exists"`
	InfrastructurePath string `json:"infrastructure_path"`
	WorktreePath       string `json:"worktree_path,omitempty"`
}

// DeleteResult is the outcome of deleting a branch with its worktree
type DeleteResult struct {
	Branch         string `json:"branch"`
	AlreadyDeleted bool   `json:"already_deleted"`
}

// SyncStatus describes how a branch relates to its target
type SyncStatus struct {
	Branch      string `json:"branch"`
	Target      string `json:"target"`
	AheadCount  int    `json:"ahead_count"`
	BehindCount int    `json:"behind_count"`
	IsInSync    bool   `json:"is_in_sync"`
	Diverged    bool   `json:"diverged"`
	Description string `json:"status_description"`
}

// SyncAction describes what a sync operation did
type SyncAction string

const (
	// SyncActionNone means the branch was already in sync
	SyncActionNone SyncAction = "none"
	// SyncActionMerge means the target was merged into the branch
	SyncActionMerge SyncAction = "merge"
)

// SyncResult is the outcome of syncing a branch with its target
type SyncResult struct {
	Branch string     `json:"branch"`
	Target string     `json:"target"`
	Action SyncAction `json:"action_taken"`
}

// MergeResult is the outcome of merging a session branch into a target
type MergeResult struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DiffResult holds the diff between two branches
type DiffResult struct {
	Source       string   `json:"source_branch"`
	Target       string   `json:"target_branch"`
	Diff         string   `json:"diff"`
	ChangedFiles []string `json:"changed_files"`
}

// CommitResult is the outcome of a stage+commit operation. NoChanges
// distinguishes "nothing to commit" from failure; CommitID is empty in
// that case.
type CommitResult struct {
	CommitID      string    `json:"commit_id,omitempty"`
	CommitMessage string    `json:"commit_message,omitempty"`
	Branch        string    `json:"branch"`
	CommitDate    time.Time `json:"commit_date,omitzero"`
	NoChanges     bool      `json:"no_changes"`
}

// ChatBranch describes a session branch for listing
type ChatBranch struct {
	BranchName         string    `json:"branch_name"`
	SessionNumber      int       `json:"session_number"`
	LastCommitDate     time.Time `json:"last_commit_date"`
	LastCommitMessage  string    `json:"last_commit_message"`
	InfrastructurePath string    `json:"infrastructure_path"`
	WorktreeExists     bool      `json:"worktree_exists"`
}

// BranchSummary describes any branch for listing
type BranchSummary struct {
	BranchName         string    `json:"branch_name"`
	IsMain             bool      `json:"is_main"`
	LastCommitDate     time.Time `json:"last_commit_date"`
	LastCommitMessage  string    `json:"last_commit_message"`
	InfrastructurePath string    `json:"infrastructure_path"`
	PathExists         bool      `json:"path_exists"`
}
