// Package tui provides the terminal watch view for Airth's timers
// using the Bubbletea framework.
package tui

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/tec-office/internal/command"
	"github.com/xvierd/tec-office/internal/config"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// tickMsg is sent on every timer tick.
type tickMsg time.Time

// statusMsg carries a freshly fetched status listing.
type statusMsg struct {
	result domain.Result
}

// actionMsg carries the outcome of a key-triggered command.
type actionMsg struct {
	result domain.Result
}

// completionMsg announces a timer that reached zero.
type completionMsg struct {
	message string
}

// Model is the watch view for one user's pomodoro and countdown.
type Model struct {
	ctx        context.Context
	controller ports.TimerController
	userID     string
	config     domain.PomodoroConfig
	theme      config.ThemeConfig

	pomodoro  *domain.PomodoroStatus
	countdown *domain.CountdownStatus
	flash     string
	failed    bool
	width     int
}

// NewModel creates a watch model. config supplies the phase lengths used for
// the progress bar.
func NewModel(ctx context.Context, controller ports.TimerController, userID string, cfg domain.PomodoroConfig, theme *config.ThemeConfig) Model {
	return Model{
		ctx:        ctx,
		controller: controller,
		userID:     userID,
		config:     cfg,
		theme:      resolveTheme(theme),
		width:      80,
	}
}

// Init fetches the first status and starts the ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatusCmd(), tickCmd())
}

// fetchStatusCmd returns a tea.Cmd that fetches status asynchronously.
func (m Model) fetchStatusCmd() tea.Cmd {
	return func() tea.Msg {
		return statusMsg{result: m.controller.TimerStatus(m.ctx, m.userID)}
	}
}

// controlCmd returns a tea.Cmd that applies a pomodoro action.
func (m Model) controlCmd(action command.Action) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{result: m.controller.ControlPomodoro(m.ctx, m.userID, string(action))}
	}
}

// cancelCountdownCmd returns a tea.Cmd that cancels the countdown.
func (m Model) cancelCountdownCmd() tea.Cmd {
	return func() tea.Msg {
		return actionMsg{result: m.controller.CancelTimer(m.ctx, m.userID, string(domain.TimerTypeCountdown))}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			return m, m.controlCmd(command.ActionStart)
		case "p":
			if m.pomodoro != nil && m.pomodoro.Paused {
				return m, m.controlCmd(command.ActionResume)
			}
			return m, m.controlCmd(command.ActionPause)
		case "r":
			return m, m.controlCmd(command.ActionResume)
		case "n":
			return m, m.controlCmd(command.ActionSkip)
		case "c":
			return m, m.controlCmd(command.ActionCancel)
		case "x":
			return m, m.cancelCountdownCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.fetchStatusCmd(), tickCmd())

	case statusMsg:
		m.apply(msg.result)

	case actionMsg:
		m.flash = msg.result.Message
		m.failed = !msg.result.Success
		return m, m.fetchStatusCmd()

	case completionMsg:
		m.flash = msg.message
		m.failed = false
		return m, m.fetchStatusCmd()
	}

	return m, nil
}

func (m *Model) apply(result domain.Result) {
	if !result.Success {
		m.flash = result.Message
		m.failed = true
		return
	}
	m.pomodoro = result.Pomodoro
	m.countdown = result.Countdown
}

// View renders the TUI.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorWork)).MarginBottom(1)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	sections := []string{titleStyle.Render("Airth's timers · " + m.userID)}
	sections = m.viewPomodoro(sections)
	sections = m.viewCountdown(sections)

	if m.flash != "" {
		color := m.theme.ColorBreak
		if m.failed {
			color = m.theme.ColorPaused
		}
		sections = append(sections, "", lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(color)).Render(m.flash))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(m.helpText()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewPomodoro(sections []string) []string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorPaused))
	ps := m.pomodoro
	if ps == nil {
		return append(sections, statusStyle.Render("Pomodoro: loading..."))
	}

	completed := fmt.Sprintf("%d completed", ps.CompletedPomodoros)
	if ps.Phase == domain.PhaseIdle {
		return append(sections, statusStyle.Render("Pomodoro: idle · "+completed))
	}
	if !ps.Active && !ps.Paused {
		return append(sections, statusStyle.Render(fmt.Sprintf("Pomodoro: %s up next · %s", ps.Phase.Label(), completed)))
	}

	state := "running"
	if ps.Paused {
		state = "paused"
	}
	sections = append(sections, statusStyle.Render(fmt.Sprintf("Pomodoro: %s (%s) · %s", ps.Phase.Label(), state, completed)))

	remaining := remainingOf(ps.TimeRemainingSeconds)
	sections = append(sections, "")
	sections = append(sections, renderBigTime(formatDuration(remaining), m.timerColor(), m.width))

	if ps.Paused {
		pauseBadge := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(m.theme.ColorPaused)).
			Padding(0, 1).
			Render("PAUSED")
		sections = append(sections, "", pauseBadge)
	}

	sections = append(sections, "")
	pbar := m.progressBar()
	sections = append(sections, pbar.ViewAs(m.phaseProgress(remaining)))
	return sections
}

func (m Model) viewCountdown(sections []string) []string {
	cs := m.countdown
	if cs == nil || !cs.Active {
		return sections
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorBreak))
	line := fmt.Sprintf("Countdown: %s · %s left", cs.Name, formatDuration(remainingOf(cs.TimeRemainingSeconds)))
	return append(sections, "", style.Render(line))
}

func (m Model) helpText() string {
	keys := []string{"[s]tart", "[p]ause", "[r]esume", "[n]ext", "[c]ancel"}
	if m.pomodoro != nil && m.pomodoro.Paused {
		keys[1] = "[p]resume"
	}
	if m.countdown != nil && m.countdown.Active {
		keys = append(keys, "[x] cancel countdown")
	}
	keys = append(keys, "[q]uit")
	return strings.Join(keys, "  ")
}

// timerColor returns the color for the big clock, accounting for pause state.
func (m Model) timerColor() lipgloss.Color {
	switch {
	case m.pomodoro != nil && m.pomodoro.Paused:
		return lipgloss.Color(m.theme.ColorPaused)
	case m.pomodoro != nil && m.pomodoro.Phase.IsBreak():
		return lipgloss.Color(m.theme.ColorBreak)
	default:
		return lipgloss.Color(m.theme.ColorWork)
	}
}

func (m Model) progressBar() progress.Model {
	var pbar progress.Model
	switch {
	case m.pomodoro.Paused:
		pbar = progress.New(progress.WithGradient(m.theme.PausedGradientStart, m.theme.PausedGradientEnd))
	case m.pomodoro.Phase.IsBreak():
		pbar = progress.New(progress.WithGradient(m.theme.BreakGradientStart, m.theme.BreakGradientEnd))
	default:
		pbar = progress.New(progress.WithGradient(m.theme.WorkGradientStart, m.theme.WorkGradientEnd))
	}
	pbar.Width = max(m.width-4, 10)
	return pbar
}

// phaseProgress is the elapsed fraction of the current phase.
func (m Model) phaseProgress(remaining time.Duration) float64 {
	total, err := m.config.DurationFor(m.pomodoro.Phase)
	if err != nil || total <= 0 {
		return 0
	}
	if remaining > total {
		total = remaining
	}
	return 1 - float64(remaining)/float64(total)
}

func remainingOf(seconds *float64) time.Duration {
	if seconds == nil {
		return 0
	}
	return time.Duration(*seconds * float64(time.Second))
}

// tickCmd creates a command that sends a tick message.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// formatDuration formats a duration as MM:SS, or H:MM:SS past an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
