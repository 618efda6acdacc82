package branch_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/tests/helpers"
)

func TestCheckSyncStatusUpToDate(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	if _, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1"); err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}

	status, err := mgr.CheckSyncStatus(ctx, "user/alice/1", "")
	if err != nil {
		t.Fatalf("CheckSyncStatus failed: %v", err)
	}
	if !status.IsInSync || status.Diverged {
		t.Errorf("Fresh branch should be in sync: %+v", status)
	}
	if status.Target != branch.MainBranch {
		t.Errorf("Empty target should default to main, got %s", status.Target)
	}
	want := "'user/alice/1' is up to date with 'main'"
	if status.Description != want {
		t.Errorf("Expected %q, got %q", want, status.Description)
	}
}

func TestCheckSyncStatusDiverged(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	created, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}

	// Two commits on the branch
	helpers.WriteFile(t, created.WorktreePath, "infrastructure/a.tf", "variable \"a\" {}\n")
	helpers.CommitAll(t, created.WorktreePath, "Add a")
	helpers.WriteFile(t, created.WorktreePath, "infrastructure/b.tf", "variable \"b\" {}\n")
	helpers.CommitAll(t, created.WorktreePath, "Add b")

	// Three commits on main
	for i := 1; i <= 3; i++ {
		helpers.WriteFile(t, repoDir, fmt.Sprintf("infrastructure/m%d.tf", i),
			fmt.Sprintf("variable \"m%d\" {}\n", i))
		helpers.CommitAll(t, repoDir, fmt.Sprintf("Main change %d", i))
	}

	status, err := mgr.CheckSyncStatus(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("CheckSyncStatus failed: %v", err)
	}
	if status.AheadCount != 2 {
		t.Errorf("Expected ahead 2, got %d", status.AheadCount)
	}
	if status.BehindCount != 3 {
		t.Errorf("Expected behind 3, got %d", status.BehindCount)
	}
	if !status.Diverged || status.IsInSync {
		t.Errorf("Expected diverged status: %+v", status)
	}
	want := "'user/alice/1' has diverged (ahead: 2, behind: 3)"
	if status.Description != want {
		t.Errorf("Expected %q, got %q", want, status.Description)
	}
}

func TestCheckSyncStatusUnknownBranch(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)

	_, err := mgr.CheckSyncStatus(context.Background(), "user/ghost/1", "main")
	if !branch.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestSyncWithTarget(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	created, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}

	// Branch in sync: sync is a no-op
	result, err := mgr.SyncWithTarget(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("SyncWithTarget failed: %v", err)
	}
	if result.Action != branch.SyncActionNone {
		t.Errorf("Expected no-op sync, got %s", result.Action)
	}

	// Advance main, then sync should merge
	helpers.WriteFile(t, repoDir, "infrastructure/new.tf", "variable \"new\" {}\n")
	helpers.CommitAll(t, repoDir, "Main change")

	result, err = mgr.SyncWithTarget(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("SyncWithTarget failed: %v", err)
	}
	if result.Action != branch.SyncActionMerge {
		t.Errorf("Expected merge action, got %s", result.Action)
	}

	status, err := mgr.CheckSyncStatus(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("CheckSyncStatus failed: %v", err)
	}
	if !status.IsInSync {
		t.Errorf("Branch should be in sync after merge: %+v", status)
	}

	// The merged file is visible in the branch's worktree
	if _, err := helpers.ReadFile(created.WorktreePath, "infrastructure/new.tf"); err != nil {
		t.Errorf("Merged file should exist in worktree: %v", err)
	}
}

func TestMergeBranch(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	created, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}

	helpers.WriteFile(t, created.WorktreePath, "infrastructure/web.tf",
		"resource \"aws_instance\" \"web\" {\n  ami = \"ami-123\"\n}\n")
	helpers.CommitAll(t, created.WorktreePath, "Add web server")

	result, err := mgr.MergeBranch(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("MergeBranch failed: %v", err)
	}
	if result.Source != "user/alice/1" || result.Target != "main" {
		t.Errorf("Unexpected merge result: %+v", result)
	}

	// main's primary checkout now has the file
	if _, err := helpers.ReadFile(repoDir, "infrastructure/web.tf"); err != nil {
		t.Errorf("Merged file should exist on main: %v", err)
	}

	status, err := mgr.CheckSyncStatus(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("CheckSyncStatus failed: %v", err)
	}
	if status.AheadCount != 0 {
		t.Errorf("Branch should have nothing unmerged, ahead=%d", status.AheadCount)
	}
}

func TestMergeIntoSelfRejected(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)

	_, err := mgr.MergeBranch(context.Background(), "main", "main")
	if !errors.Is(err, branch.ErrMergeIntoSelf) {
		t.Errorf("Expected ErrMergeIntoSelf, got %v", err)
	}
}

func TestBranchDiff(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	created, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("CreateBranchWithWorktree failed: %v", err)
	}

	diff, err := mgr.BranchDiff(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("BranchDiff failed: %v", err)
	}
	if len(diff.ChangedFiles) != 0 {
		t.Errorf("Fresh branch should have no diff, got %v", diff.ChangedFiles)
	}

	helpers.WriteFile(t, created.WorktreePath, "infrastructure/db.tf",
		"resource \"aws_db_instance\" \"db\" {}\n")
	helpers.CommitAll(t, created.WorktreePath, "Add database")

	diff, err = mgr.BranchDiff(ctx, "user/alice/1", "main")
	if err != nil {
		t.Fatalf("BranchDiff failed: %v", err)
	}
	if len(diff.ChangedFiles) != 1 || diff.ChangedFiles[0] != "infrastructure/db.tf" {
		t.Errorf("Unexpected changed files: %v", diff.ChangedFiles)
	}
	if diff.Diff == "" {
		t.Error("Expected a non-empty diff")
	}
}

// Two sessions working in parallel: after the first session's work is merged
// into main, the second session reports being behind.
func TestParallelSessionsDivergeThroughMain(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	mgr := branch.NewManager(repoDir, nil)
	ctx := context.Background()

	first, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/1")
	if err != nil {
		t.Fatalf("Create first session failed: %v", err)
	}
	if _, err := mgr.CreateBranchWithWorktree(ctx, "user/alice/2"); err != nil {
		t.Fatalf("Create second session failed: %v", err)
	}

	helpers.WriteFile(t, first.WorktreePath, "infrastructure/vpc.tf",
		"resource \"aws_vpc\" \"main\" {}\n")
	helpers.CommitAll(t, first.WorktreePath, "Add vpc")

	if _, err := mgr.MergeBranch(ctx, "user/alice/1", "main"); err != nil {
		t.Fatalf("MergeBranch failed: %v", err)
	}

	status, err := mgr.CheckSyncStatus(ctx, "user/alice/2", "main")
	if err != nil {
		t.Fatalf("CheckSyncStatus failed: %v", err)
	}
	if status.BehindCount < 1 {
		t.Errorf("Second session should be behind main, got %d", status.BehindCount)
	}

	// Sync catches the second session up
	if _, err := mgr.SyncWithTarget(ctx, "user/alice/2", "main"); err != nil {
		t.Fatalf("SyncWithTarget failed: %v", err)
	}
	status, err = mgr.CheckSyncStatus(ctx, "user/alice/2", "main")
	if err != nil {
		t.Fatalf("CheckSyncStatus failed: %v", err)
	}
	if !status.IsInSync {
		t.Errorf("Second session should be in sync after merge: %+v", status)
	}
}
