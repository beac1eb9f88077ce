package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xvierd/tec-office/internal/command"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/persona"
	"github.com/xvierd/tec-office/internal/ports"
	"github.com/xvierd/tec-office/internal/timer"
)

// DefaultUserID is used when a caller does not name a user.
const DefaultUserID = "default"

// Completion describes a timer that reached zero.
type Completion struct {
	UserID    string
	TimerType domain.TimerType
	// Name is the countdown name, or the label of the finished phase.
	Name string
	// Next is the pending pomodoro phase; empty for countdowns.
	Next    domain.Phase
	Message string
}

// TimerService owns one pomodoro and one countdown per user and turns
// every outcome into a domain.Result.
type TimerService struct {
	config   domain.PomodoroConfig
	store    ports.StateStore
	notifier ports.Notifier
	persona  *persona.Persona
	logger   *log.Logger

	mu     sync.Mutex
	agents map[string]*agentTimers

	listenersMu sync.RWMutex
	listeners   []func(Completion)
}

type agentTimers struct {
	pomodoro  *timer.Pomodoro
	countdown *timer.Countdown
}

// Ensure TimerService implements ports.TimerController.
var _ ports.TimerController = (*TimerService)(nil)

// Option configures a TimerService.
type Option func(*TimerService)

// WithStore persists pomodoro state.
func WithStore(store ports.StateStore) Option {
	return func(s *TimerService) { s.store = store }
}

// WithNotifier announces completed timers.
func WithNotifier(n ports.Notifier) Option {
	return func(s *TimerService) { s.notifier = n }
}

// WithPersona sets the voice used by Respond.
func WithPersona(p *persona.Persona) Option {
	return func(s *TimerService) { s.persona = p }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *TimerService) { s.logger = l }
}

// NewTimerService creates a service whose timers use config.
func NewTimerService(config domain.PomodoroConfig, opts ...Option) (*TimerService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &TimerService{
		config: config,
		agents: make(map[string]*agentTimers),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.persona == nil {
		s.persona = persona.Default()
	}
	return s, nil
}

// OnCompletion registers fn to run whenever any timer finishes.
func (s *TimerService) OnCompletion(fn func(Completion)) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

// Pomodoro returns the user's pomodoro timer, creating and restoring it on first use.
func (s *TimerService) Pomodoro(ctx context.Context, userID string) (*timer.Pomodoro, error) {
	userID = normalizeUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	agent := s.agentLocked(userID)
	if agent.pomodoro != nil {
		return agent.pomodoro, nil
	}

	opts := []timer.Option{timer.WithLogger(s.logger)}
	if s.store != nil {
		opts = append(opts, timer.WithStore(s.store))
	}
	p, err := timer.NewPomodoro(ctx, userID, s.config, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.OnEvent(timer.EventComplete, func(e timer.PomodoroEvent) error {
		return s.pomodoroCompleted(userID, e)
	}); err != nil {
		return nil, err
	}
	agent.pomodoro = p
	return p, nil
}

// Countdown returns the user's countdown timer, creating it on first use.
func (s *TimerService) Countdown(userID string) *timer.Countdown {
	userID = normalizeUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	agent := s.agentLocked(userID)
	if agent.countdown != nil {
		return agent.countdown
	}

	c := timer.NewCountdown(userID, timer.WithLogger(s.logger))
	_ = c.OnEvent(timer.EventComplete, func(e timer.CountdownEvent) error {
		return s.countdownCompleted(userID, e)
	})
	agent.countdown = c
	return c
}

func (s *TimerService) agentLocked(userID string) *agentTimers {
	agent, ok := s.agents[userID]
	if !ok {
		agent = &agentTimers{}
		s.agents[userID] = agent
	}
	return agent
}

// existing returns the timers already created for a user without creating any.
func (s *TimerService) existing(userID string) agentTimers {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agent, ok := s.agents[normalizeUser(userID)]; ok {
		return *agent
	}
	return agentTimers{}
}

// SetTimer starts a countdown, or a pomodoro work session when timerType is "pomodoro".
func (s *TimerService) SetTimer(ctx context.Context, userID string, minutes float64, timerType, name string) domain.Result {
	if timerType == "" {
		timerType = string(domain.TimerTypeCountdown)
	}
	tt, err := domain.ValidateTimerType(timerType)
	if err != nil || tt == domain.TimerTypeAll {
		return domain.Failure(fmt.Errorf("%w %q: must be countdown or pomodoro", domain.ErrUnknownTimerType, timerType))
	}

	if tt == domain.TimerTypePomodoro {
		return s.startPomodoro(ctx, userID, minutes)
	}

	if minutes <= 0 {
		return domain.Failure(fmt.Errorf("%w: countdown needs a positive number of minutes", domain.ErrInvalidDuration))
	}
	c := s.Countdown(userID)
	if err := c.Start(domain.MinutesToDuration(minutes), name); err != nil {
		return domain.Failure(err)
	}
	status := c.Status()
	return domain.Result{
		Success:   true,
		Message:   fmt.Sprintf("Countdown timer '%s' started for %s minutes.", status.Name, formatMinutes(minutes)),
		TimerType: domain.TimerTypeCountdown,
		Action:    "set",
		Countdown: &status,
	}
}

func (s *TimerService) startPomodoro(ctx context.Context, userID string, minutes float64) domain.Result {
	p, err := s.Pomodoro(ctx, userID)
	if err != nil {
		return domain.Failure(err)
	}
	if minutes > 0 {
		if err := p.SetWorkDuration(domain.MinutesToDuration(minutes)); err != nil {
			return s.pomodoroFailure(p, "start", err)
		}
	}
	if err := p.Start(domain.PhaseWork); err != nil {
		return s.pomodoroFailure(p, "start", err)
	}
	status := p.Status()
	work := p.Config().WorkDuration
	return domain.Result{
		Success:   true,
		Message:   fmt.Sprintf("Pomodoro work session started for %s minutes.", formatMinutes(work.Minutes())),
		TimerType: domain.TimerTypePomodoro,
		Action:    "start",
		Pomodoro:  &status,
	}
}

// TimerStatus lists the user's running and paused timers.
func (s *TimerService) TimerStatus(ctx context.Context, userID string) domain.Result {
	p, err := s.Pomodoro(ctx, userID)
	if err != nil {
		return domain.Failure(err)
	}
	result := domain.Result{Success: true, Action: "status", TimerType: domain.TimerTypeAll}

	if c := s.existing(userID).countdown; c != nil {
		cs := c.Status()
		result.Countdown = &cs
		if cs.Active {
			result.ActiveTimers = append(result.ActiveTimers, domain.TimerInfo{
				TimerType:              domain.TimerTypeCountdown,
				Name:                   cs.Name,
				TimeRemainingSeconds:   cs.TimeRemainingSeconds,
				TimeRemainingFormatted: cs.TimeRemainingFormatted,
			})
		}
	}

	ps := p.Status()
	result.Pomodoro = &ps
	if ps.Active || ps.Paused {
		result.ActiveTimers = append(result.ActiveTimers, pomodoroInfo(ps))
	}

	switch n := len(result.ActiveTimers); n {
	case 0:
		result.Message = "No active timers."
	case 1:
		result.Message = "You have 1 active timer: " + describe(result.ActiveTimers[0]) + "."
	default:
		parts := make([]string, 0, n)
		for _, info := range result.ActiveTimers {
			parts = append(parts, describe(info))
		}
		result.Message = fmt.Sprintf("You have %d active timers: %s.", n, strings.Join(parts, "; "))
	}
	return result
}

// CancelTimer cancels the countdown, the pomodoro, or both.
func (s *TimerService) CancelTimer(ctx context.Context, userID, timerType string) domain.Result {
	tt, err := domain.ValidateTimerType(timerType)
	if err != nil {
		return domain.Failure(fmt.Errorf("%w %q: must be countdown, pomodoro or all", err, timerType))
	}

	result := domain.Result{TimerType: tt, Action: "cancel"}

	if tt == domain.TimerTypeCountdown || tt == domain.TimerTypeAll {
		if c := s.existing(userID).countdown; c != nil {
			before := c.Status()
			if c.Cancel() {
				result.CancelledTimers = append(result.CancelledTimers, domain.TimerInfo{
					TimerType: domain.TimerTypeCountdown,
					Name:      before.Name,
				})
			}
		}
	}

	if tt == domain.TimerTypePomodoro || tt == domain.TimerTypeAll {
		p, err := s.Pomodoro(ctx, userID)
		if err != nil {
			return domain.Failure(err)
		}
		before := p.Status()
		if err := p.Cancel(); err == nil {
			result.CancelledTimers = append(result.CancelledTimers, domain.TimerInfo{
				TimerType:          domain.TimerTypePomodoro,
				Phase:              before.Phase,
				CompletedPomodoros: before.CompletedPomodoros,
			})
		} else if !errors.Is(err, domain.ErrNothingToCancel) {
			return domain.Failure(err)
		}
	}

	if len(result.CancelledTimers) == 0 {
		result.Message = "No active timers to cancel."
		return result
	}
	names := make([]string, 0, len(result.CancelledTimers))
	for _, info := range result.CancelledTimers {
		names = append(names, string(info.TimerType))
	}
	result.Success = true
	result.Message = "Cancelled " + strings.Join(names, " and ") + " timer."
	return result
}

// ControlPomodoro applies a control action to the user's pomodoro.
func (s *TimerService) ControlPomodoro(ctx context.Context, userID, action string) domain.Result {
	act := command.Action(strings.ToLower(strings.TrimSpace(action)))

	switch act {
	case command.ActionStart, command.ActionPause, command.ActionResume,
		command.ActionSkip, command.ActionCancel, command.ActionStatus:
	default:
		result := domain.Failure(fmt.Errorf("%w %q", domain.ErrUnknownAction, action))
		result.TimerType = domain.TimerTypePomodoro
		if suggestion, ok := command.SuggestAction(action); ok {
			result.Suggestion = suggestion
			result.Message += fmt.Sprintf("; did you mean %q?", suggestion)
		}
		return result
	}

	p, err := s.Pomodoro(ctx, userID)
	if err != nil {
		return domain.Failure(err)
	}
	before := p.Status()

	var opErr error
	switch act {
	case command.ActionStart:
		opErr = p.Start("")
	case command.ActionPause:
		opErr = p.Pause()
	case command.ActionResume:
		opErr = p.Resume()
	case command.ActionSkip:
		opErr = p.Skip()
	case command.ActionCancel:
		opErr = p.Cancel()
	}
	if opErr != nil {
		return s.pomodoroFailure(p, string(act), opErr)
	}

	status := p.Status()
	var msg string
	switch act {
	case command.ActionStart:
		msg = fmt.Sprintf("%s phase started: %s remaining.", status.Phase.Label(), status.TimeRemainingFormatted)
	case command.ActionPause:
		msg = fmt.Sprintf("Pomodoro paused with %s remaining.", status.TimeRemainingFormatted)
	case command.ActionResume:
		msg = fmt.Sprintf("Pomodoro resumed: %s remaining in %s.", status.TimeRemainingFormatted, status.Phase.Label())
	case command.ActionSkip:
		msg = fmt.Sprintf("Skipped %s. Next up: %s.", before.Phase.Label(), status.Phase.Label())
	case command.ActionCancel:
		msg = "Pomodoro cancelled."
	case command.ActionStatus:
		msg = describePomodoro(status)
	}

	return domain.Result{
		Success:   true,
		Message:   msg,
		TimerType: domain.TimerTypePomodoro,
		Action:    string(act),
		Pomodoro:  &status,
	}
}

// StartPhase starts a specific pomodoro phase; an empty phase means work.
func (s *TimerService) StartPhase(ctx context.Context, userID, phase string) domain.Result {
	p, err := s.Pomodoro(ctx, userID)
	if err != nil {
		return domain.Failure(err)
	}
	if err := p.Start(domain.Phase(strings.ToLower(strings.TrimSpace(phase)))); err != nil {
		return s.pomodoroFailure(p, string(command.ActionStart), err)
	}
	status := p.Status()
	return domain.Result{
		Success:   true,
		Message:   fmt.Sprintf("%s phase started: %s remaining.", status.Phase.Label(), status.TimeRemainingFormatted),
		TimerType: domain.TimerTypePomodoro,
		Action:    string(command.ActionStart),
		Pomodoro:  &status,
	}
}

// ProcessCommand interprets a natural-language request and runs it.
func (s *TimerService) ProcessCommand(ctx context.Context, userID, text string) domain.Result {
	cmd, err := command.Parse(text)
	if err != nil {
		s.logger.Debug("unrecognized timer command", "user", normalizeUser(userID), "text", text)
		return domain.Result{
			Success: false,
			Message: "I couldn't understand that timer command. Try \"set a timer for 10 minutes\" or \"start a pomodoro\".",
			Action:  "unrecognized",
		}
	}

	switch cmd.Action {
	case command.ActionSet:
		return s.SetTimer(ctx, userID, cmd.Minutes, string(domain.TimerTypeCountdown), cmd.Name)
	case command.ActionStart:
		if cmd.Minutes > 0 {
			return s.SetTimer(ctx, userID, cmd.Minutes, string(domain.TimerTypePomodoro), "")
		}
		return s.ControlPomodoro(ctx, userID, string(command.ActionStart))
	case command.ActionCancel:
		return s.CancelTimer(ctx, userID, string(cmd.Target))
	case command.ActionStatus:
		return s.TimerStatus(ctx, userID)
	default:
		return s.ControlPomodoro(ctx, userID, string(cmd.Action))
	}
}

// Respond runs ProcessCommand and adds Airth's phrasing of the outcome.
func (s *TimerService) Respond(ctx context.Context, userID, text string) domain.Result {
	result := s.ProcessCommand(ctx, userID, text)
	result.AirthResponse = s.persona.Respond(result)
	return result
}

// Close disarms every timer. Persisted pomodoro state is kept.
func (s *TimerService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, agent := range s.agents {
		if agent.pomodoro != nil {
			agent.pomodoro.Close()
		}
		if agent.countdown != nil {
			agent.countdown.Close()
		}
	}
}

func (s *TimerService) pomodoroFailure(p *timer.Pomodoro, action string, err error) domain.Result {
	status := p.Status()
	return domain.Result{
		Success:   false,
		Message:   err.Error(),
		TimerType: domain.TimerTypePomodoro,
		Action:    action,
		Pomodoro:  &status,
	}
}

func (s *TimerService) pomodoroCompleted(userID string, e timer.PomodoroEvent) error {
	c := Completion{
		UserID:    userID,
		TimerType: domain.TimerTypePomodoro,
		Name:      e.Phase.Label(),
		Next:      e.Status.Phase,
		Message:   s.persona.Announce(e.Phase.Label()),
	}
	var err error
	if s.notifier != nil {
		err = s.notifier.NotifyPhaseComplete(e.Phase, e.Status.Phase, e.Status.CompletedPomodoros)
	}
	s.broadcast(c)
	return err
}

func (s *TimerService) countdownCompleted(userID string, e timer.CountdownEvent) error {
	c := Completion{
		UserID:    userID,
		TimerType: domain.TimerTypeCountdown,
		Name:      e.Status.Name,
		Message:   s.persona.Announce(e.Status.Name),
	}
	var err error
	if s.notifier != nil {
		err = s.notifier.NotifyCountdownComplete(e.Status.Name)
	}
	s.broadcast(c)
	return err
}

func (s *TimerService) broadcast(c Completion) {
	s.listenersMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(c)
	}
}

func pomodoroInfo(ps domain.PomodoroStatus) domain.TimerInfo {
	return domain.TimerInfo{
		TimerType:              domain.TimerTypePomodoro,
		Phase:                  ps.Phase,
		CompletedPomodoros:     ps.CompletedPomodoros,
		TimeRemainingSeconds:   ps.TimeRemainingSeconds,
		TimeRemainingFormatted: ps.TimeRemainingFormatted,
	}
}

func describe(info domain.TimerInfo) string {
	if info.TimerType == domain.TimerTypeCountdown {
		return fmt.Sprintf("%s (%s left)", info.Name, info.TimeRemainingFormatted)
	}
	return fmt.Sprintf("pomodoro %s (%s left)", info.Phase.Label(), info.TimeRemainingFormatted)
}

func describePomodoro(ps domain.PomodoroStatus) string {
	switch {
	case ps.Active:
		return fmt.Sprintf("%s in progress: %s remaining. %d pomodoros completed.",
			ps.Phase.Label(), ps.TimeRemainingFormatted, ps.CompletedPomodoros)
	case ps.Paused:
		return fmt.Sprintf("%s paused with %s remaining. %d pomodoros completed.",
			ps.Phase.Label(), ps.TimeRemainingFormatted, ps.CompletedPomodoros)
	case ps.Phase == domain.PhaseIdle:
		return fmt.Sprintf("Pomodoro is idle. %d pomodoros completed.", ps.CompletedPomodoros)
	default:
		return fmt.Sprintf("%s is up next. %d pomodoros completed.", ps.Phase.Label(), ps.CompletedPomodoros)
	}
}

func formatMinutes(minutes float64) string {
	return strconv.FormatFloat(minutes, 'f', -1, 64)
}

func normalizeUser(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

// WaitForCountdown blocks until the user's countdown finishes or ctx ends.
// It returns false when the countdown was cancelled or ctx was done first.
func (s *TimerService) WaitForCountdown(ctx context.Context, userID string) bool {
	c := s.Countdown(userID)
	done := make(chan bool, 2)
	offComplete, _ := c.Subscribe(timer.EventComplete, func(timer.CountdownEvent) error {
		select {
		case done <- true:
		default:
		}
		return nil
	})
	defer offComplete()
	offCancel, _ := c.Subscribe(timer.EventCancel, func(timer.CountdownEvent) error {
		select {
		case done <- false:
		default:
		}
		return nil
	})
	defer offCancel()
	if !c.Status().Active {
		return false
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case ok := <-done:
			return ok
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if !c.Status().Active {
				select {
				case ok := <-done:
					return ok
				default:
					return false
				}
			}
		}
	}
}
