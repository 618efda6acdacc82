package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/core/tfcode"
)

// jsonResult marshals a value as an indented JSON text result
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// requiredString extracts a required string argument
func requiredString(args map[string]interface{}, name string) (string, error) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

func (s *Server) handleSessionCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}

	user, _ := args["user"].(string)
	if user == "" {
		user = "default"
	}

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	number, err := mgr.NextSessionNumber(ctx)
	if err != nil {
		return nil, err
	}

	result, err := mgr.CreateBranchWithWorktree(ctx, branch.SessionBranchName(user, number))
	if err != nil {
		return nil, err
	}

	return jsonResult(result)
}

func (s *Server) handleSessionDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	branchName, err := requiredString(args, "branch")
	if err != nil {
		return nil, err
	}

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	result, err := mgr.DeleteBranchWithWorktree(ctx, branchName)
	if err != nil {
		return nil, err
	}

	return jsonResult(result)
}

func (s *Server) handleSessionList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	branches, err := mgr.ListChatBranches(ctx)
	if err != nil {
		return nil, err
	}

	return jsonResult(map[string]interface{}{"branches": branches})
}

func (s *Server) handleBranchStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	branchName, err := requiredString(args, "branch")
	if err != nil {
		return nil, err
	}
	target, _ := args["target"].(string)

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	status, err := mgr.CheckSyncStatus(ctx, branchName, target)
	if err != nil {
		return nil, err
	}

	return jsonResult(status)
}

func (s *Server) handleBranchSync(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	branchName, err := requiredString(args, "branch")
	if err != nil {
		return nil, err
	}
	target, _ := args["target"].(string)

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	result, err := mgr.SyncWithTarget(ctx, branchName, target)
	if err != nil {
		return nil, err
	}

	return jsonResult(result)
}

func (s *Server) handleBranchMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	source, err := requiredString(args, "source")
	if err != nil {
		return nil, err
	}
	target, _ := args["target"].(string)

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	result, err := mgr.MergeBranch(ctx, source, target)
	if err != nil {
		return nil, err
	}

	return jsonResult(result)
}

func (s *Server) handleCommitChanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	branchName, err := requiredString(args, "branch")
	if err != nil {
		return nil, err
	}
	message, err := requiredString(args, "message")
	if err != nil {
		return nil, err
	}

	var files []string
	if raw, ok := args["files"].([]interface{}); ok {
		for _, item := range raw {
			if f, ok := item.(string); ok && f != "" {
				files = append(files, f)
			}
		}
	}

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	result, err := mgr.CommitChanges(ctx, branchName, message, files)
	if err != nil {
		return nil, err
	}

	return jsonResult(result)
}

func (s *Server) handleBlocksSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	branchName, _ := args["branch"].(string)
	if branchName == "" {
		branchName = "main"
	}

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	snapshot, err := tfcode.ParseDirectory(mgr.InfrastructurePath(branchName))
	if err != nil {
		return nil, err
	}

	return jsonResult(tfcode.Summarize(snapshot))
}

func (s *Server) handleConfigCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}
	source, err := requiredString(args, "source")
	if err != nil {
		return nil, err
	}
	target, _ := args["target"].(string)
	if target == "" {
		target = "main"
	}

	mgr, err := s.branchManager(projectID)
	if err != nil {
		return nil, err
	}

	targetSnapshot, err := tfcode.ParseDirectory(mgr.InfrastructurePath(target))
	if err != nil {
		return nil, err
	}
	sourceSnapshot, err := tfcode.ParseDirectory(mgr.InfrastructurePath(source))
	if err != nil {
		return nil, err
	}

	return jsonResult(tfcode.Compare(targetSnapshot, sourceSnapshot))
}
