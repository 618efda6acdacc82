// Package branch manages the branch-per-session model: every chat session
// gets its own branch checked out in a dedicated worktree, while main uses
// the project's primary working directory. Branch and worktree creation are
// atomic from the caller's perspective.
package branch

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/keir/tfmux/internal/core/git"
	"github.com/keir/tfmux/internal/core/logger"
)

// Manager owns the branch+worktree lifecycle for one project
type Manager struct {
	projectPath string
	gitOps      *git.Operations
	log         logger.Logger
}

// NewManager creates a branch manager for the project rooted at projectPath
func NewManager(projectPath string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		projectPath: projectPath,
		gitOps:      git.NewOperations(projectPath),
		log:         log,
	}
}

// GitOps exposes the underlying git operations for collaborators that need
// read-only repository access.
func (m *Manager) GitOps() *git.Operations {
	return m.gitOps
}

// ProjectPath returns the project root directory
func (m *Manager) ProjectPath() string {
	return m.projectPath
}

// worktreeDirName derives the worktree directory name from a branch name.
// Separators and spaces become underscores; when sanitization loses
// information an FNV hash suffix keeps distinct branch names from colliding
// (user/a_b/1 vs user/a/b_1 would otherwise map to the same directory).
func worktreeDirName(branch string) string {
	sanitized := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(branch)
	if sanitized == branch {
		return sanitized
	}
	h := fnv.New32a()
	h.Write([]byte(branch))
	return fmt.Sprintf("%s-%08x", sanitized, h.Sum32())
}

// WorktreeRootPath returns the checkout root for a branch: the project root
// for main, the worktree directory for everything else. Pure path
// computation, no side effects.
func (m *Manager) WorktreeRootPath(branch string) string {
	if branch == MainBranch {
		return m.projectPath
	}
	return filepath.Join(m.projectPath, WorktreesDir, worktreeDirName(branch))
}

// InfrastructurePath returns the Terraform configuration directory for a
// branch.
func (m *Manager) InfrastructurePath(branch string) string {
	return filepath.Join(m.WorktreeRootPath(branch), InfrastructureDir)
}

// ModulesPath returns the local modules directory for a branch
func (m *Manager) ModulesPath(branch string) string {
	return filepath.Join(m.WorktreeRootPath(branch), ModulesDir)
}

// worktreeExists reports whether the checkout root for a non-main branch is
// present on disk.
func (m *Manager) worktreeExists(branch string) bool {
	if branch == MainBranch {
		return true
	}
	info, err := os.Stat(m.WorktreeRootPath(branch))
	return err == nil && info.IsDir()
}

const gitignoreContent = `# Terraform files
.terraform/
*.tfstate
*.tfstate.backup
*.tfplan

# Worktrees
.worktrees/

# tfmux metadata
.tfmux/

# Logs
*.log
`

const initialMainTF = "# tfmux project main configuration\n\n"

// InitRepository initializes the project's git repository. Idempotent: if
// the repository already exists it only ensures the infrastructure
// directory is present.
func (m *Manager) InitRepository(ctx context.Context) (*InitResult, error) {
	infraPath := filepath.Join(m.projectPath, InfrastructureDir)

	if m.gitOps.IsGitRepository() {
		if err := os.MkdirAll(infraPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create infrastructure directory: %w", err)
		}
		return &InitResult{AlreadyExists: true, MainPath: infraPath}, nil
	}

	if err := os.MkdirAll(m.projectPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := m.gitOps.Init(ctx); err != nil {
		return nil, err
	}

	gitignorePath := filepath.Join(m.projectPath, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}

	if err := os.MkdirAll(infraPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create infrastructure directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(m.projectPath, ModulesDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create modules directory: %w", err)
	}

	mainTF := filepath.Join(infraPath, "main.tf")
	if _, err := os.Stat(mainTF); os.IsNotExist(err) {
		if err := os.WriteFile(mainTF, []byte(initialMainTF), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write main.tf: %w", err)
		}
	}
	tfvars := filepath.Join(infraPath, "terraform.tfvars.json")
	if _, err := os.Stat(tfvars); os.IsNotExist(err) {
		if err := os.WriteFile(tfvars, []byte("{\n}\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write terraform.tfvars.json: %w", err)
		}
	}

	if err := m.gitOps.StageAll(ctx, m.projectPath); err != nil {
		return nil, err
	}
	if _, err := m.gitOps.Commit(ctx, m.projectPath, "Initial commit"); err != nil {
		return nil, err
	}

	// The default branch name depends on git configuration; normalize to main
	current, err := m.gitOps.CurrentBranch()
	if err != nil {
		return nil, err
	}
	if current != MainBranch {
		if err := m.gitOps.RenameBranch(ctx, current, MainBranch); err != nil {
			return nil, err
		}
	}

	m.log.Info("repository initialized", "path", m.projectPath)

	return &InitResult{AlreadyExists: false, MainPath: infraPath}, nil
}

// CreateBranchWithWorktree creates a branch from main's tip together with
// its worktree. If the branch exists without a worktree, only the worktree
// is created (repair path). On worktree creation failure the new branch is
// deleted so no half-created state is left behind.
func (m *Manager) CreateBranchWithWorktree(ctx context.Context, branchName string) (*CreateResult, error) {
	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	exists, err := m.gitOps.BranchExists(branchName)
	if err != nil {
		return nil, err
	}

	if exists {
		if branchName != MainBranch && !m.worktreeExists(branchName) {
			// Branch exists but its worktree is gone; recreate it
			if err := m.createWorktree(ctx, branchName); err != nil {
				return nil, err
			}
			m.log.Info("recreated worktree for existing branch", "branch", branchName)
			return &CreateResult{
				Branch:             branchName,
				AlreadyExists:      false,
				InfrastructurePath: m.InfrastructurePath(branchName),
				WorktreePath:       m.WorktreeRootPath(branchName),
			}, nil
		}
		return &CreateResult{
			Branch:             branchName,
			AlreadyExists:      true,
			InfrastructurePath: m.InfrastructurePath(branchName),
		}, nil
	}

	if err := m.gitOps.CreateBranch(ctx, branchName, MainBranch); err != nil {
		return nil, err
	}

	if branchName == MainBranch {
		return &CreateResult{
			Branch:             branchName,
			InfrastructurePath: m.InfrastructurePath(branchName),
		}, nil
	}

	if err := m.createWorktree(ctx, branchName); err != nil {
		// Roll back so branch and worktree creation stay atomic for callers
		if delErr := m.gitOps.DeleteBranch(ctx, branchName); delErr != nil {
			m.log.Error("rollback of branch creation failed", "branch", branchName, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create worktree for %s: %w", branchName, err)
	}

	m.log.Info("created branch with worktree", "branch", branchName)

	return &CreateResult{
		Branch:             branchName,
		AlreadyExists:      false,
		InfrastructurePath: m.InfrastructurePath(branchName),
		WorktreePath:       m.WorktreeRootPath(branchName),
	}, nil
}

func (m *Manager) createWorktree(ctx context.Context, branchName string) error {
	worktreePath := m.WorktreeRootPath(branchName)
	if err := os.MkdirAll(filepath.Dir(worktreePath), 0o755); err != nil {
		return fmt.Errorf("failed to create worktrees directory: %w", err)
	}
	return m.gitOps.AddWorktree(ctx, worktreePath, branchName)
}

// DeleteBranchWithWorktree removes a branch's worktree and then the branch
// ref. Deleting main is rejected before any mutation. Deleting a branch
// that does not exist succeeds with AlreadyDeleted set.
func (m *Manager) DeleteBranchWithWorktree(ctx context.Context, branchName string) (*DeleteResult, error) {
	if branchName == MainBranch {
		return nil, ErrCannotDeleteMain
	}

	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	exists, err := m.gitOps.BranchExists(branchName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &DeleteResult{Branch: branchName, AlreadyDeleted: true}, nil
	}

	worktreePath := m.WorktreeRootPath(branchName)
	if m.worktreeExists(branchName) {
		if err := m.gitOps.RemoveWorktree(ctx, worktreePath); err != nil {
			m.log.Warn("git worktree removal failed, falling back to filesystem cleanup",
				"branch", branchName, "error", err)
			if rmErr := os.RemoveAll(worktreePath); rmErr != nil {
				m.log.Error("worktree cleanup failed", "path", worktreePath, "error", rmErr)
			}
			_ = m.gitOps.PruneWorktrees(ctx)
		}
	}

	if err := m.gitOps.DeleteBranch(ctx, branchName); err != nil {
		// The worktree is already gone; surface this as a partial failure so
		// callers know manual cleanup may be needed
		return nil, &PartialFailureError{Op: "delete branch " + branchName, Err: err}
	}

	m.log.Info("deleted branch with worktree", "branch", branchName)

	return &DeleteResult{Branch: branchName, AlreadyDeleted: false}, nil
}

// ListChatBranches lists session branches (user/<user>/<n>) sorted by
// session number descending. Branches whose trailing segment is not an
// integer are skipped with a warning.
func (m *Manager) ListChatBranches(ctx context.Context) ([]*ChatBranch, error) {
	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	branches, err := m.gitOps.Branches()
	if err != nil {
		return nil, err
	}

	var chatBranches []*ChatBranch
	for _, b := range branches {
		if !strings.HasPrefix(b.Name, SessionBranchPrefix) {
			continue
		}
		segments := strings.Split(b.Name, "/")
		sessionNumber, err := strconv.Atoi(segments[len(segments)-1])
		if err != nil {
			m.log.Warn("skipping branch with non-numeric session segment", "branch", b.Name)
			continue
		}

		infraPath := m.InfrastructurePath(b.Name)
		_, statErr := os.Stat(infraPath)
		chatBranches = append(chatBranches, &ChatBranch{
			BranchName:         b.Name,
			SessionNumber:      sessionNumber,
			LastCommitDate:     b.CommitDate,
			LastCommitMessage:  b.CommitMessage,
			InfrastructurePath: infraPath,
			WorktreeExists:     statErr == nil,
		})
	}

	// Newest session first
	sort.Slice(chatBranches, func(i, j int) bool {
		return chatBranches[i].SessionNumber > chatBranches[j].SessionNumber
	})

	return chatBranches, nil
}

// NextSessionNumber returns the next free session number for a user
func (m *Manager) NextSessionNumber(ctx context.Context) (int, error) {
	chatBranches, err := m.ListChatBranches(ctx)
	if err != nil {
		return 0, err
	}
	if len(chatBranches) == 0 {
		return 1, nil
	}
	return chatBranches[0].SessionNumber + 1, nil
}

// SessionBranchName builds the branch name for a user's session
func SessionBranchName(user string, session int) string {
	return fmt.Sprintf("%s%s/%d", SessionBranchPrefix, user, session)
}

// ListBranches lists every local branch with its infrastructure path
func (m *Manager) ListBranches(ctx context.Context) ([]*BranchSummary, error) {
	if !m.gitOps.IsGitRepository() {
		return nil, &NotFoundError{Kind: "repository", Name: m.projectPath}
	}

	branches, err := m.gitOps.Branches()
	if err != nil {
		return nil, err
	}

	summaries := make([]*BranchSummary, 0, len(branches))
	for _, b := range branches {
		infraPath := m.InfrastructurePath(b.Name)
		_, statErr := os.Stat(infraPath)
		summaries = append(summaries, &BranchSummary{
			BranchName:         b.Name,
			IsMain:             b.Name == MainBranch,
			LastCommitDate:     b.CommitDate,
			LastCommitMessage:  b.CommitMessage,
			InfrastructurePath: infraPath,
			PathExists:         statErr == nil,
		})
	}
	return summaries, nil
}
