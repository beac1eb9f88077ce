package timer

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xvierd/tec-office/internal/domain"
)

// Countdown is a single named one-shot timer. It is never persisted.
type Countdown struct {
	id     string
	userID string
	logger *log.Logger
	hooks  *hooks[CountdownEvent]

	mu      sync.Mutex
	active  bool
	name    string
	endTime time.Time
	wake    wakeup
}

// NewCountdown creates an inactive countdown timer for userID.
func NewCountdown(userID string, opts ...Option) *Countdown {
	o := buildOptions(opts)
	id := domain.NewID()
	logger := o.logger.With("timer", "countdown", "user", userID, "id", shortID(id))

	return &Countdown{
		id:     id,
		userID: userID,
		logger: logger,
		hooks:  newHooks[CountdownEvent](logger, EventStart, EventComplete, EventCancel),
	}
}

// ID returns the timer id.
func (c *Countdown) ID() string { return c.id }

// OnEvent registers fn for one of on_start, on_complete or on_cancel.
func (c *Countdown) OnEvent(e Event, fn func(CountdownEvent) error) error {
	return c.hooks.add(e, fn)
}

// Subscribe registers fn like OnEvent and returns a func that removes it.
func (c *Countdown) Subscribe(e Event, fn func(CountdownEvent) error) (func(), error) {
	return c.hooks.subscribe(e, fn)
}

// DefaultCountdownName is the name given to an unnamed countdown.
func DefaultCountdownName(d time.Duration) string {
	return fmt.Sprintf("Timer for %s minutes", strconv.FormatFloat(d.Minutes(), 'f', -1, 64))
}

// Start begins a countdown of d. A running countdown is cancelled first
// and its on_cancel callbacks fire before on_start.
func (c *Countdown) Start(d time.Duration, name string) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDuration, d)
	}
	if name == "" {
		name = DefaultCountdownName(d)
	}

	c.mu.Lock()
	now := time.Now()
	var replaced *domain.CountdownStatus
	if c.active {
		st := c.statusLocked(now)
		replaced = &st
		c.active = false
		c.wake.disarm()
	}

	c.active = true
	c.name = name
	c.endTime = now.Add(d)
	c.wake.arm(d, c.complete)
	status := c.statusLocked(now)
	c.mu.Unlock()

	if replaced != nil {
		c.logger.Info("countdown replaced", "name", replaced.Name)
		c.hooks.fire(EventCancel, CountdownEvent{Event: EventCancel, Status: *replaced})
	}
	c.logger.Info("countdown started", "name", name, "duration", d)
	c.hooks.fire(EventStart, CountdownEvent{Event: EventStart, Status: status})
	return nil
}

// Cancel stops a running countdown. It returns false when nothing was running.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return false
	}
	status := c.statusLocked(time.Now())
	c.active = false
	c.wake.disarm()
	c.mu.Unlock()

	c.logger.Info("countdown cancelled", "name", status.Name)
	c.hooks.fire(EventCancel, CountdownEvent{Event: EventCancel, Status: status})
	return true
}

// Status returns a snapshot of the countdown.
func (c *Countdown) Status() domain.CountdownStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked(time.Now())
}

// Close disarms the pending wake-up without firing callbacks.
func (c *Countdown) Close() {
	c.mu.Lock()
	c.wake.disarm()
	c.mu.Unlock()
}

func (c *Countdown) complete(token uint64) {
	c.mu.Lock()
	if !c.active || !c.wake.claim(token) {
		c.mu.Unlock()
		return
	}
	c.active = false
	status := c.statusLocked(time.Now())
	c.mu.Unlock()

	c.logger.Info("countdown complete", "name", status.Name)
	c.hooks.fire(EventComplete, CountdownEvent{Event: EventComplete, Status: status})
}

func (c *Countdown) statusLocked(now time.Time) domain.CountdownStatus {
	status := domain.CountdownStatus{
		Active: c.active,
		Name:   c.name,
	}
	if c.active {
		remaining := c.endTime.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		secs := remaining.Seconds()
		status.TimeRemainingSeconds = &secs
		status.TimeRemainingFormatted = domain.FormatRemaining(remaining)
	}
	return status
}
