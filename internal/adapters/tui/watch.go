package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/xvierd/tec-office/internal/config"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// Watch runs the full-screen watch view as a Bubbletea program.
type Watch struct {
	controller ports.TimerController
	userID     string
	config     domain.PomodoroConfig
	theme      *config.ThemeConfig

	mu      sync.RWMutex
	program *tea.Program
}

// NewWatch creates a watch view for userID.
func NewWatch(controller ports.TimerController, userID string, cfg domain.PomodoroConfig, theme *config.ThemeConfig) *Watch {
	return &Watch{
		controller: controller,
		userID:     userID,
		config:     cfg,
		theme:      theme,
	}
}

// getTerminalWidth returns the current terminal width, defaulting to 80.
func getTerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < 40 {
		return 80
	}
	return w
}

// Run starts the watch view and blocks until the user quits or ctx ends.
// Cancelling ctx is how callers stop the view.
func (w *Watch) Run(ctx context.Context) error {
	model := NewModel(ctx, w.controller, w.userID, w.config, w.theme)
	model.width = getTerminalWidth()

	w.mu.Lock()
	w.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	program := w.program
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.program = nil
		w.mu.Unlock()
	}()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Announce shows a completion message in the running view.
func (w *Watch) Announce(message string) {
	w.mu.RLock()
	program := w.program
	w.mu.RUnlock()

	if program != nil {
		program.Send(completionMsg{message: message})
	}
}

// ShowStatus prints a result as plain text without starting interactive mode.
func ShowStatus(out io.Writer, result domain.Result) {
	if !result.Success {
		fmt.Fprintf(out, "✗ %s\n", result.Message)
		if result.AirthResponse != "" {
			fmt.Fprintf(out, "\n%s\n", result.AirthResponse)
		}
		return
	}

	fmt.Fprintf(out, "%s\n", result.Message)
	for _, info := range result.ActiveTimers {
		switch info.TimerType {
		case domain.TimerTypeCountdown:
			fmt.Fprintf(out, "   ⏰ %s: %s left\n", info.Name, info.TimeRemainingFormatted)
		case domain.TimerTypePomodoro:
			fmt.Fprintf(out, "   🍅 %s: %s left (%d completed)\n",
				info.Phase.Label(), info.TimeRemainingFormatted, info.CompletedPomodoros)
		}
	}
	if result.AirthResponse != "" {
		fmt.Fprintf(out, "\n%s\n", result.AirthResponse)
	}
}
