package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/keir/tfmux/internal/core/logger"
	"github.com/keir/tfmux/internal/core/project"
	"github.com/keir/tfmux/internal/mcp"
)

var mcpLogLevelFlag string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Starts the Model Context Protocol server on stdin/stdout so AI
agents can create sessions, commit changes and merge branches.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpLogLevelFlag, "log-level", "info", "log level (debug, info, warn, error)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	baseDir, err := project.DefaultBaseDir()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	switch mcpLogLevelFlag {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// Logs go to stderr; stdout carries the MCP protocol
	log := logger.New(
		logger.WithLevel(level),
		logger.WithOutput(cmd.ErrOrStderr()),
	)

	srv := mcp.NewServer(project.NewManager(baseDir), log)

	log.Info("starting MCP server", "projects", baseDir)
	return srv.ServeStdio()
}
