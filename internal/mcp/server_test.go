package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/core/logger"
	"github.com/keir/tfmux/internal/core/project"
)

// setupTestServer creates a server with one initialized project and returns
// both along with the project ID.
func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	projects := project.NewManager(t.TempDir())
	info, err := projects.Create("test-project")
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if _, err := branch.NewManager(info.Path, nil).InitRepository(context.Background()); err != nil {
		t.Fatalf("failed to init repository: %v", err)
	}

	return NewServer(projects, logger.Nop()), info.ID
}

func callTool(t *testing.T, s *Server, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) map[string]interface{} {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	return payload
}

func TestSessionCreateAndList(t *testing.T) {
	s, projectID := setupTestServer(t)

	created := callTool(t, s, s.handleSessionCreate, map[string]interface{}{
		"project_id": projectID,
		"user":       "alice",
	})
	if created["branch"] != "user/alice/1" {
		t.Errorf("expected branch user/alice/1, got %v", created["branch"])
	}

	listed := callTool(t, s, s.handleSessionList, map[string]interface{}{
		"project_id": projectID,
	})
	branches, ok := listed["branches"].([]interface{})
	if !ok || len(branches) != 1 {
		t.Fatalf("expected one session branch, got %v", listed["branches"])
	}
}

func TestSessionCreateMissingProjectID(t *testing.T) {
	s, _ := setupTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{}

	if _, err := s.handleSessionCreate(context.Background(), req); err == nil {
		t.Error("expected error for missing project_id")
	}
}

func TestBranchStatusTool(t *testing.T) {
	s, projectID := setupTestServer(t)

	callTool(t, s, s.handleSessionCreate, map[string]interface{}{
		"project_id": projectID,
		"user":       "alice",
	})

	status := callTool(t, s, s.handleBranchStatus, map[string]interface{}{
		"project_id": projectID,
		"branch":     "user/alice/1",
	})
	if status["is_in_sync"] != true {
		t.Errorf("fresh session should be in sync: %v", status)
	}
}

func TestCommitChangesToolNoChanges(t *testing.T) {
	s, projectID := setupTestServer(t)

	callTool(t, s, s.handleSessionCreate, map[string]interface{}{
		"project_id": projectID,
		"user":       "alice",
	})

	result := callTool(t, s, s.handleCommitChanges, map[string]interface{}{
		"project_id": projectID,
		"branch":     "user/alice/1",
		"message":    "nothing to do",
	})
	if result["no_changes"] != true {
		t.Errorf("clean tree should report no_changes: %v", result)
	}
}

func TestSessionDeleteTool(t *testing.T) {
	s, projectID := setupTestServer(t)

	callTool(t, s, s.handleSessionCreate, map[string]interface{}{
		"project_id": projectID,
		"user":       "alice",
	})

	deleted := callTool(t, s, s.handleSessionDelete, map[string]interface{}{
		"project_id": projectID,
		"branch":     "user/alice/1",
	})
	if deleted["already_deleted"] != false {
		t.Errorf("first delete should not be already_deleted: %v", deleted)
	}

	// Idempotent second delete
	deleted = callTool(t, s, s.handleSessionDelete, map[string]interface{}{
		"project_id": projectID,
		"branch":     "user/alice/1",
	})
	if deleted["already_deleted"] != true {
		t.Errorf("second delete should be already_deleted: %v", deleted)
	}
}

func TestBlocksSummaryTool(t *testing.T) {
	s, projectID := setupTestServer(t)

	summary := callTool(t, s, s.handleBlocksSummary, map[string]interface{}{
		"project_id": projectID,
	})
	if _, ok := summary["files"]; !ok {
		t.Errorf("expected files key in summary: %v", summary)
	}
}
