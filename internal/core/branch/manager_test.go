package branch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/core/git"
	"github.com/keir/tfmux/internal/tests/helpers"
)

func TestInitRepository(t *testing.T) {
	// git needs an identity for the initial commit; the fresh directory has
	// no repo-local config yet
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	projectDir := filepath.Join(t.TempDir(), "project")
	mgr := branch.NewManager(projectDir, nil)
	ctx := context.Background()

	result, err := mgr.InitRepository(ctx)
	if err != nil {
		t.Fatalf("InitRepository failed: %v", err)
	}
	if result.AlreadyExists {
		t.Error("Fresh init should not report AlreadyExists")
	}

	for _, path := range []string{
		filepath.Join(projectDir, ".gitignore"),
		filepath.Join(projectDir, "infrastructure", "main.tf"),
		filepath.Join(projectDir, "infrastructure", "terraform.tfvars.json"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}

	current, err := mgr.GitOps().CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if current != branch.MainBranch {
		t.Errorf("Expected branch %s, got %s", branch.MainBranch, current)
	}

	// Second init is a no-op
	result, err = mgr.InitRepository(ctx)
	if err != nil {
		t.Fatalf("Second InitRepository failed: %v", err)
	}
	if !result.AlreadyExists {
		t.Error("Second init should report AlreadyExists")
	}
}

func TestCreateBranchWithWorktree(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	result, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}
	if result.AlreadyExists {
		t.Error("New branch should not report AlreadyExists")
	}
	if result.WorktreePath == "" {
		t.Error("Expected a worktree path")
	}

	if _, err := os.Stat(filepath.Join(result.InfrastructurePath, "main.tf")); err != nil {
		t.Errorf("Worktree should contain infrastructure/main.tf: %v", err)
	}

	// Creating again reports the existing branch instead of failing
	result, err = mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("Second create failed: %v", err)
	}
	if !result.AlreadyExists {
		t.Error("Second create should report AlreadyExists")
	}
}

func TestCreateBranchWorktreeRepair(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	// Branch exists but has no worktree
	if err := mgr.GitOps().CreateBranch(ctx, "user/alice/1", "main"); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}

	result, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}
	if result.AlreadyExists {
		t.Error("Repair path should not report AlreadyExists")
	}
	if _, err := os.Stat(result.WorktreePath); err != nil {
		t.Errorf("Worktree should have been recreated: %v", err)
	}
}

func TestCreateBranchRollsBackOnWorktreeFailure(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	// Occupy the worktree path so 'git worktree add' fails
	worktreePath := mgr.WorktreeRootPath("user/alice/1")
	if err := os.MkdirAll(worktreePath, 0o755); err != nil {
		t.Fatalf("Failed to pre-create worktree path: %v", err)
	}
	if err := os.WriteFile(filepath.Join(worktreePath, "blocker"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write blocker file: %v", err)
	}

	_, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err == nil {
		t.Fatal("Expected worktree creation to fail")
	}

	// The branch must have been rolled back
	exists, err := mgr.GitOps().BranchExists("user/alice/1")
	if err != nil {
		t.Fatalf("BranchExists failed: %v", err)
	}
	if exists {
		t.Error("Branch should have been deleted after worktree failure")
	}
}

func TestDeleteBranchWithWorktree(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	created, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}

	result, err := mgr.DeleteBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("DeleteBranchWithWorktree failed: %v", err)
	}
	if result.AlreadyDeleted {
		t.Error("First delete should not report AlreadyDeleted")
	}

	if _, err := os.Stat(created.WorktreePath); !os.IsNotExist(err) {
		t.Error("Worktree directory should be gone")
	}
	exists, err := mgr.GitOps().BranchExists("user/alice/1")
	if err != nil {
		t.Fatalf("BranchExists failed: %v", err)
	}
	if exists {
		t.Error("Branch should be gone")
	}

	// Deleting again succeeds idempotently
	result, err = mgr.DeleteBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if !result.AlreadyDeleted {
		t.Error("Second delete should report AlreadyDeleted")
	}
}

func TestDeleteMainRejected(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)

	_, err := mgr.DeleteBranchWithWorktree(context.Background(), branch.MainBranch)
	if !errors.Is(err, branch.ErrCannotDeleteMain) {
		t.Errorf("Expected ErrCannotDeleteMain, got %v", err)
	}

	// main must be untouched
	exists, err := mgr.GitOps().BranchExists(branch.MainBranch)
	if err != nil || !exists {
		t.Errorf("main branch should still exist (exists=%v, err=%v)", exists, err)
	}
}

func TestListChatBranches(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	for _, name := range []string{"user/alice/1", "user/alice/3", "user/bob/2"} {
		if _, err := mgr.CreateBranchWithWorktree(ctx, name); err != nil {
			t.Fatalf("CreateBranchWithWorktree(%s) failed: %v", name, err)
		}
	}
	// Non-numeric session segment is skipped, not an error
	ops := git.NewOperations(repoDir)
	if err := ops.CreateBranch(ctx, "user/alice/wip", "main"); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}

	sessions, err := mgr.ListChatBranches(ctx)
	if err != nil {
		t.Fatalf("ListChatBranches failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 session branches, got %d", len(sessions))
	}

	// Sorted by session number descending
	want := []int{3, 2, 1}
	for i, session := range sessions {
		if session.SessionNumber != want[i] {
			t.Errorf("Position %d: expected session %d, got %d", i, want[i], session.SessionNumber)
		}
		if !session.WorktreeExists {
			t.Errorf("Session %s should have a worktree", session.BranchName)
		}
	}

	next, err := mgr.NextSessionNumber(ctx)
	if err != nil {
		t.Fatalf("NextSessionNumber failed: %v", err)
	}
	if next != 4 {
		t.Errorf("Expected next session 4, got %d", next)
	}
}

func TestSessionBranchName(t *testing.T) {
	if got := branch.SessionBranchName("alice", 7); got != "user/alice/7" {
		t.Errorf("Expected user/alice/7, got %s", got)
	}
}

func TestWorktreePathsDistinct(t *testing.T) {
	mgr := branch.NewManager("/tmp/project", nil)

	// Sanitization alone would map both names to user_a_b_1
	a := mgr.WorktreeRootPath("user/a_b/1")
	b := mgr.WorktreeRootPath("user/a/b_1")
	if a == b {
		t.Errorf("Distinct branches must get distinct worktree paths, both got %s", a)
	}

	if got := mgr.WorktreeRootPath(branch.MainBranch); got != "/tmp/project" {
		t.Errorf("main should use the project root, got %s", got)
	}
}
