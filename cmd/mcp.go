package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server communicates over stdio and provides tools for setting,
inspecting and cancelling timers and for controlling the pomodoro.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs go to stderr.
		app.logger.Info("starting MCP server on stdio", "user", currentUser())

		server := mcp.NewServer(app.timers, currentUser())
		defer func() { _ = server.Stop() }()
		if err := server.Start(setupSignalHandler()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}

		return nil
	},
}
