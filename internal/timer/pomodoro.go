package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

const saveTimeout = 5 * time.Second

// Pomodoro cycles through work and break phases for one user.
//
// A phase never starts on its own: when one completes the timer becomes
// inactive with the next phase pending, and the caller starts or resumes it.
// State is written to the store after every transition; store failures are
// logged and never surface to callers.
type Pomodoro struct {
	id     string
	userID string
	store  ports.StateStore
	logger *log.Logger
	hooks  *hooks[PomodoroEvent]

	mu        sync.Mutex
	config    domain.PomodoroConfig
	active    bool
	paused    bool
	phase     domain.Phase
	completed int
	endTime   time.Time
	remaining time.Duration
	wake      wakeup
	seq       uint64

	persistMu sync.Mutex
	savedSeq  uint64
}

// NewPomodoro creates a pomodoro timer and restores the user's saved state.
// The durations in config always win over persisted ones.
func NewPomodoro(ctx context.Context, userID string, config domain.PomodoroConfig, opts ...Option) (*Pomodoro, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	id := domain.NewID()
	logger := o.logger.With("timer", "pomodoro", "user", userID, "id", shortID(id))

	p := &Pomodoro{
		id:     id,
		userID: userID,
		store:  o.store,
		logger: logger,
		hooks: newHooks[PomodoroEvent](logger,
			EventStart, EventComplete, EventPause, EventResume, EventCancel),
		config: config,
		phase:  domain.PhaseIdle,
	}
	p.restore(ctx)
	return p, nil
}

// ID returns the timer id.
func (p *Pomodoro) ID() string { return p.id }

// UserID returns the owning user.
func (p *Pomodoro) UserID() string { return p.userID }

// Config returns the active configuration.
func (p *Pomodoro) Config() domain.PomodoroConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// OnEvent registers fn for a lifecycle event.
func (p *Pomodoro) OnEvent(e Event, fn func(PomodoroEvent) error) error {
	return p.hooks.add(e, fn)
}

// Start begins phase. An empty phase starts a work phase.
func (p *Pomodoro) Start(phase domain.Phase) error {
	if phase == "" {
		phase = domain.PhaseWork
	}
	if _, err := domain.ValidatePhase(string(phase)); err != nil {
		return err
	}

	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		p.logger.Warn("timer is already running")
		return domain.ErrAlreadyActive
	}
	d, err := p.config.DurationFor(phase)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	now := time.Now()
	p.phase = phase
	p.run(now, d)
	state, seq := p.snapshotLocked(now)
	status := p.statusLocked(now)
	p.mu.Unlock()

	p.persist(state, seq)
	p.logger.Info("phase started", "phase", phase, "duration", d)
	p.hooks.fire(EventStart, PomodoroEvent{Event: EventStart, Phase: phase, Status: status})
	return nil
}

// Pause freezes the remaining time of the running phase.
func (p *Pomodoro) Pause() error {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return domain.ErrNotActive
	}
	now := time.Now()
	remaining := p.endTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	p.wake.disarm()
	p.active = false
	p.paused = true
	p.remaining = remaining
	p.endTime = time.Time{}
	phase := p.phase
	state, seq := p.snapshotLocked(now)
	status := p.statusLocked(now)
	p.mu.Unlock()

	p.persist(state, seq)
	p.logger.Info("phase paused", "phase", phase, "remaining", remaining.Round(time.Second))
	p.hooks.fire(EventPause, PomodoroEvent{Event: EventPause, Phase: phase, Status: status})
	return nil
}

// Resume continues a paused phase with its remaining time, or starts the
// pending phase in full when it was never started.
func (p *Pomodoro) Resume() error {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return domain.ErrAlreadyActive
	}
	if p.phase == domain.PhaseIdle {
		p.mu.Unlock()
		return domain.ErrNothingToResume
	}
	d := p.remaining
	if !p.paused {
		var err error
		if d, err = p.config.DurationFor(p.phase); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	now := time.Now()
	p.run(now, d)
	phase := p.phase
	state, seq := p.snapshotLocked(now)
	status := p.statusLocked(now)
	p.mu.Unlock()

	p.persist(state, seq)
	p.logger.Info("phase resumed", "phase", phase, "remaining", d.Round(time.Second))
	p.hooks.fire(EventResume, PomodoroEvent{Event: EventResume, Phase: phase, Status: status})
	return nil
}

// Skip completes the current phase immediately, running or not. A work
// phase only counts as a completed pomodoro if it was started.
func (p *Pomodoro) Skip() error {
	p.mu.Lock()
	if p.phase == domain.PhaseIdle {
		p.mu.Unlock()
		return domain.ErrNothingToSkip
	}
	started := p.active || p.paused
	p.wake.disarm()
	p.finishLocked(time.Now(), started, "phase skipped")
	return nil
}

// Cancel abandons the current phase and returns to idle. The completed
// pomodoro count is kept.
func (p *Pomodoro) Cancel() error {
	p.mu.Lock()
	if !p.active && p.phase == domain.PhaseIdle {
		p.mu.Unlock()
		return domain.ErrNothingToCancel
	}
	now := time.Now()
	phase := p.phase
	p.wake.disarm()
	p.active = false
	p.paused = false
	p.remaining = 0
	p.endTime = time.Time{}
	p.phase = domain.PhaseIdle
	state, seq := p.snapshotLocked(now)
	status := p.statusLocked(now)
	p.mu.Unlock()

	p.persist(state, seq)
	p.logger.Info("timer cancelled", "phase", phase)
	p.hooks.fire(EventCancel, PomodoroEvent{Event: EventCancel, Phase: phase, Status: status})
	return nil
}

// SetWorkDuration changes the work length for phases started afterwards.
func (p *Pomodoro) SetWorkDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDuration, d)
	}
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return domain.ErrAlreadyActive
	}
	p.config.WorkDuration = d
	state, seq := p.snapshotLocked(time.Now())
	p.mu.Unlock()

	p.persist(state, seq)
	return nil
}

// Status returns a snapshot of the timer.
func (p *Pomodoro) Status() domain.PomodoroStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked(time.Now())
}

// Close disarms the pending wake-up. State is left untouched so a later
// process can restore it.
func (p *Pomodoro) Close() {
	p.mu.Lock()
	p.wake.disarm()
	p.mu.Unlock()
}

func (p *Pomodoro) complete(token uint64) {
	p.mu.Lock()
	if !p.active || !p.wake.claim(token) {
		p.mu.Unlock()
		return
	}
	p.finishLocked(time.Now(), true, "phase complete")
}

// run arms the wake-up for d. Callers hold mu.
func (p *Pomodoro) run(now time.Time, d time.Duration) {
	p.active = true
	p.paused = false
	p.remaining = 0
	p.endTime = now.Add(d)
	p.wake.arm(d, p.complete)
}

// finishLocked moves to the next phase and releases mu before persisting
// and firing on_complete. started reports whether the phase ever ran.
func (p *Pomodoro) finishLocked(now time.Time, started bool, msg string) {
	finished := p.phase
	if finished == domain.PhaseWork && started {
		p.completed++
	}
	p.phase = p.config.NextPhase(finished, p.completed)
	p.active = false
	p.paused = false
	p.remaining = 0
	p.endTime = time.Time{}
	state, seq := p.snapshotLocked(now)
	status := p.statusLocked(now)
	p.mu.Unlock()

	p.persist(state, seq)
	p.logger.Info(msg, "phase", finished, "next", status.Phase, "completed", status.CompletedPomodoros)
	p.hooks.fire(EventComplete, PomodoroEvent{Event: EventComplete, Phase: finished, Status: status})
}

func (p *Pomodoro) statusLocked(now time.Time) domain.PomodoroStatus {
	status := domain.PomodoroStatus{
		Active:             p.active,
		Phase:              p.phase,
		CompletedPomodoros: p.completed,
		Paused:             p.paused,
	}
	var remaining time.Duration
	switch {
	case p.active:
		remaining = p.endTime.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
	case p.paused:
		remaining = p.remaining
	default:
		return status
	}
	secs := remaining.Seconds()
	status.TimeRemainingSeconds = &secs
	status.TimeRemainingFormatted = domain.FormatRemaining(remaining)
	return status
}

// snapshotLocked builds the persisted record and stamps it with a sequence
// number so that concurrent saves land in order.
func (p *Pomodoro) snapshotLocked(now time.Time) (domain.TimerState, uint64) {
	p.seq++
	state := domain.TimerState{
		WorkMinutes:        domain.DurationToMinutes(p.config.WorkDuration),
		ShortBreakMinutes:  domain.DurationToMinutes(p.config.ShortBreakDuration),
		LongBreakMinutes:   domain.DurationToMinutes(p.config.LongBreakDuration),
		LongBreakInterval:  p.config.LongBreakInterval,
		CompletedPomodoros: p.completed,
		CurrentPhase:       p.phase,
		Active:             p.active,
		LastUpdated:        now.UTC(),
	}
	if p.active {
		end := p.endTime.UTC()
		state.EndTime = &end
	}
	if p.paused {
		state.RemainingSeconds = p.remaining.Seconds()
	}
	return state, p.seq
}

func (p *Pomodoro) persist(state domain.TimerState, seq uint64) {
	if p.store == nil {
		return
	}
	p.persistMu.Lock()
	defer p.persistMu.Unlock()
	if seq <= p.savedSeq {
		return
	}
	p.savedSeq = seq

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.store.Save(ctx, p.userID, state); err != nil {
		p.logger.Error("failed to save timer state", "err", err)
	}
}

func (p *Pomodoro) restore(ctx context.Context) {
	if p.store == nil {
		return
	}
	state, err := p.store.Load(ctx, p.userID)
	if err != nil {
		p.logger.Error("failed to load timer state", "err", err)
		return
	}
	if state == nil {
		return
	}

	// The restored wake-up may fire before restore returns; complete
	// blocks on mu until the timer is fully armed.
	p.mu.Lock()
	defer p.mu.Unlock()

	if state.CompletedPomodoros > 0 {
		p.completed = state.CompletedPomodoros
	}
	phase := state.CurrentPhase
	if _, err := domain.ValidatePhase(string(phase)); err != nil {
		phase = domain.PhaseIdle
	}

	now := time.Now()
	switch {
	case state.Active && phase != domain.PhaseIdle && state.EndTime != nil && state.EndTime.After(now):
		remaining := state.EndTime.Sub(now)
		p.phase = phase
		p.active = true
		p.endTime = *state.EndTime
		p.wake.arm(remaining, p.complete)
		p.logger.Info("restored running timer", "phase", phase, "remaining", remaining.Round(time.Second))
	case state.Active:
		p.phase = domain.PhaseIdle
		p.logger.Info("discarded expired timer state", "phase", state.CurrentPhase)
	default:
		p.phase = phase
		if phase != domain.PhaseIdle && state.RemainingSeconds > 0 {
			p.paused = true
			p.remaining = state.Remaining()
		}
	}
}
