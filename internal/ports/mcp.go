package ports

import (
	"context"

	"github.com/xvierd/tec-office/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// TimerController is the command surface shared by the CLI, MCP and HTTP adapters.
// This is a driven port (implemented by services layer).
// Every method resolves failures into the returned Result.
type TimerController interface {
	// SetTimer starts a countdown or a pomodoro work session.
	SetTimer(ctx context.Context, userID string, minutes float64, timerType, name string) domain.Result

	// TimerStatus lists the user's active timers.
	TimerStatus(ctx context.Context, userID string) domain.Result

	// CancelTimer cancels the countdown, the pomodoro, or both ("all").
	CancelTimer(ctx context.Context, userID, timerType string) domain.Result

	// ControlPomodoro applies start, pause, resume, skip, cancel or status.
	ControlPomodoro(ctx context.Context, userID, action string) domain.Result

	// ProcessCommand interprets a natural-language timer command.
	ProcessCommand(ctx context.Context, userID, text string) domain.Result

	// Respond is ProcessCommand plus Airth's phrasing of the outcome.
	Respond(ctx context.Context, userID, text string) domain.Result
}
