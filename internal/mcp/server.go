// Package mcp exposes tfmux operations as MCP tools so AI agents can manage
// sessions, commits and merges over the Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keir/tfmux/internal/core/branch"
	"github.com/keir/tfmux/internal/core/logger"
	"github.com/keir/tfmux/internal/core/project"
)

// Server implements the MCP server for tfmux
type Server struct {
	mcpServer *server.MCPServer
	projects  *project.Manager
	log       logger.Logger
}

// NewServer creates a new MCP server backed by the given project manager
func NewServer(projects *project.Manager, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	mcpServer := server.NewMCPServer(
		"tfmux",
		"1.0.0",
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		projects:  projects,
		log:       log,
	}

	s.registerTools()

	return s
}

// ServeStdio runs the server on stdin/stdout
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// branchManager resolves a project ID to a branch manager
func (s *Server) branchManager(projectID string) (*branch.Manager, error) {
	info, err := s.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	return branch.NewManager(info.Path, s.log), nil
}

// registerTools declares every tool with an explicit schema
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("session_create",
		mcp.WithDescription("Create a new isolated session branch with its worktree"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("user",
			mcp.Description("User namespace for the session branch (default: default)"),
		),
	), s.handleSessionCreate)

	s.mcpServer.AddTool(mcp.NewTool("session_delete",
		mcp.WithDescription("Delete a session branch and its worktree"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("branch",
			mcp.Description("Session branch name"),
			mcp.Required(),
		),
	), s.handleSessionDelete)

	s.mcpServer.AddTool(mcp.NewTool("session_list",
		mcp.WithDescription("List session branches, newest first"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
	), s.handleSessionList)

	s.mcpServer.AddTool(mcp.NewTool("branch_status",
		mcp.WithDescription("Check how a branch relates to its target (ahead/behind/diverged)"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("branch",
			mcp.Description("Branch name"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Target branch (default: main)"),
		),
	), s.handleBranchStatus)

	s.mcpServer.AddTool(mcp.NewTool("branch_sync",
		mcp.WithDescription("Merge the target branch into a session branch"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("branch",
			mcp.Description("Branch name"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Target branch (default: main)"),
		),
	), s.handleBranchSync)

	s.mcpServer.AddTool(mcp.NewTool("branch_merge",
		mcp.WithDescription("Merge a session branch into the target branch. Requires explicit user confirmation upstream."),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("source",
			mcp.Description("Source branch"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Target branch (default: main)"),
		),
	), s.handleBranchMerge)

	s.mcpServer.AddTool(mcp.NewTool("commit_changes",
		mcp.WithDescription("Stage and commit pending changes on a branch"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("branch",
			mcp.Description("Branch name"),
			mcp.Required(),
		),
		mcp.WithString("message",
			mcp.Description("Commit message"),
			mcp.Required(),
		),
		mcp.WithArray("files",
			mcp.Description("Files relative to the infrastructure root; omit to commit all changes"),
		),
	), s.handleCommitChanges)

	s.mcpServer.AddTool(mcp.NewTool("blocks_summary",
		mcp.WithDescription("Summarize all Terraform blocks and the dependencies between them"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("branch",
			mcp.Description("Branch to analyze (default: main)"),
		),
	), s.handleBlocksSummary)

	s.mcpServer.AddTool(mcp.NewTool("config_compare",
		mcp.WithDescription("Compare parsed configuration between two branches, keyed by block address"),
		mcp.WithString("project_id",
			mcp.Description("Project ID"),
			mcp.Required(),
		),
		mcp.WithString("source",
			mcp.Description("Source branch"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Target branch (default: main)"),
		),
	), s.handleConfigCompare)
}
