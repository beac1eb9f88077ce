// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// Server exposes Airth's timers as MCP tools using mark3labs/mcp-go.
type Server struct {
	server     *server.MCPServer
	controller ports.TimerController
	userID     string
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer creates a new MCP server acting for userID.
func NewServer(controller ports.TimerController, userID string) *Server {
	s := &Server{
		controller: controller,
		userID:     userID,
	}

	s.server = server.NewMCPServer(
		"airth-timers",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	// Tool: set_timer
	setTool := mcp.NewTool(
		"set_timer",
		mcp.WithDescription("Start a countdown timer or a pomodoro work session"),
		mcp.WithNumber(
			"minutes",
			mcp.Required(),
			mcp.Description("Duration in minutes; fractions are allowed"),
		),
		mcp.WithString(
			"timer_type",
			mcp.Description("Which timer to start (default: countdown)"),
			mcp.Enum(string(domain.TimerTypeCountdown), string(domain.TimerTypePomodoro)),
		),
		mcp.WithString(
			"timer_name",
			mcp.Description("Name for a countdown timer"),
		),
	)
	s.server.AddTool(setTool, s.handleSetTimer)

	// Tool: get_timer_status
	s.server.AddTool(
		mcp.NewTool(
			"get_timer_status",
			mcp.WithDescription("List the running and paused timers with their remaining time"),
		),
		s.handleGetTimerStatus,
	)

	// Tool: cancel_timer
	cancelTool := mcp.NewTool(
		"cancel_timer",
		mcp.WithDescription("Cancel the countdown, the pomodoro, or both"),
		mcp.WithString(
			"timer_type",
			mcp.Description("Which timer to cancel (default: all)"),
			mcp.Enum(string(domain.TimerTypeCountdown), string(domain.TimerTypePomodoro), string(domain.TimerTypeAll)),
		),
	)
	s.server.AddTool(cancelTool, s.handleCancelTimer)

	// Tool: control_pomodoro
	controlTool := mcp.NewTool(
		"control_pomodoro",
		mcp.WithDescription("Start, pause, resume, skip, cancel or inspect the pomodoro timer"),
		mcp.WithString(
			"action",
			mcp.Required(),
			mcp.Description("Control action to apply"),
			mcp.Enum("start", "pause", "resume", "skip", "cancel", "status"),
		),
	)
	s.server.AddTool(controlTool, s.handleControlPomodoro)

	// Tool: timer_command
	commandTool := mcp.NewTool(
		"timer_command",
		mcp.WithDescription("Run a plain-English timer request such as \"set a timer for 10 minutes called Tea\""),
		mcp.WithString(
			"text",
			mcp.Required(),
			mcp.Description("The request to interpret"),
		),
	)
	s.server.AddTool(commandTool, s.handleTimerCommand)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// handleSetTimer handles the set_timer tool.
func (s *Server) handleSetTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes, err := request.RequireFloat("minutes")
	if err != nil {
		return mcp.NewToolResultError("minutes is required"), nil
	}
	timerType := request.GetString("timer_type", string(domain.TimerTypeCountdown))
	name := request.GetString("timer_name", "")

	return toolResult(s.controller.SetTimer(ctx, s.userID, minutes, timerType, name))
}

// handleGetTimerStatus handles the get_timer_status tool.
func (s *Server) handleGetTimerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.controller.TimerStatus(ctx, s.userID))
}

// handleCancelTimer handles the cancel_timer tool.
func (s *Server) handleCancelTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timerType := request.GetString("timer_type", string(domain.TimerTypeAll))
	return toolResult(s.controller.CancelTimer(ctx, s.userID, timerType))
}

// handleControlPomodoro handles the control_pomodoro tool.
func (s *Server) handleControlPomodoro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action is required"), nil
	}
	return toolResult(s.controller.ControlPomodoro(ctx, s.userID, action))
}

// handleTimerCommand handles the timer_command tool.
func (s *Server) handleTimerCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}
	return toolResult(s.controller.Respond(ctx, s.userID, text))
}

// toolResult encodes a Result as JSON text, flagged as an error when it failed.
func toolResult(result domain.Result) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	if !result.Success {
		return mcp.NewToolResultError(string(jsonData)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
