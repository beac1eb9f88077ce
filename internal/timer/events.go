package timer

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// Event names a timer lifecycle notification.
type Event string

const (
	EventStart    Event = "on_start"
	EventComplete Event = "on_complete"
	EventPause    Event = "on_pause"
	EventResume   Event = "on_resume"
	EventCancel   Event = "on_cancel"
)

// ParseEvent accepts both "on_complete" and "complete" spellings.
func ParseEvent(s string) (Event, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "on_") {
		name = "on_" + name
	}
	switch e := Event(name); e {
	case EventStart, EventComplete, EventPause, EventResume, EventCancel:
		return e, nil
	}
	return "", fmt.Errorf("%w %q", domain.ErrUnknownEvent, s)
}

// PomodoroEvent is passed to pomodoro callbacks.
type PomodoroEvent struct {
	Event Event
	// Phase is the phase the event applies to; for EventComplete it is the
	// phase that just finished.
	Phase domain.Phase
	// Status is the timer status after the transition.
	Status domain.PomodoroStatus
}

// CountdownEvent is passed to countdown callbacks.
type CountdownEvent struct {
	Event  Event
	Status domain.CountdownStatus
}

// hooks keeps callbacks per event in registration order.
type hooks[E any] struct {
	mu      sync.RWMutex
	allowed map[Event]bool
	fns     map[Event][]hook[E]
	nextID  uint64
	logger  *log.Logger
}

type hook[E any] struct {
	id uint64
	fn func(E) error
}

func newHooks[E any](logger *log.Logger, allowed ...Event) *hooks[E] {
	h := &hooks[E]{
		allowed: make(map[Event]bool, len(allowed)),
		fns:     make(map[Event][]hook[E]),
		logger:  logger,
	}
	for _, e := range allowed {
		h.allowed[e] = true
	}
	return h
}

func (h *hooks[E]) add(e Event, fn func(E) error) error {
	_, err := h.subscribe(e, fn)
	return err
}

// subscribe registers fn and returns a func that removes it again.
func (h *hooks[E]) subscribe(e Event, fn func(E) error) (func(), error) {
	if !h.allowed[e] {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownEvent, e)
	}
	if fn == nil {
		return nil, fmt.Errorf("nil callback for %s", e)
	}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.fns[e] = append(h.fns[e], hook[E]{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.fns[e] = slices.DeleteFunc(h.fns[e], func(x hook[E]) bool { return x.id == id })
	}, nil
}

func (h *hooks[E]) count(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.fns[e])
}

// fire runs every callback for e. A failing or panicking callback is
// logged and the remaining callbacks still run.
func (h *hooks[E]) fire(e Event, payload E) {
	h.mu.RLock()
	fns := slices.Clone(h.fns[e])
	h.mu.RUnlock()

	for _, x := range fns {
		h.call(e, x.fn, payload)
	}
}

func (h *hooks[E]) call(e Event, fn func(E) error, payload E) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("timer callback panicked", "event", e, "panic", r)
		}
	}()
	if err := fn(payload); err != nil {
		h.logger.Error("error in timer callback", "event", e, "err", err)
	}
}

// Option configures a timer.
type Option func(*options)

type options struct {
	store  ports.StateStore
	logger *log.Logger
}

// WithStore persists pomodoro state after every transition.
// Countdown timers are process-local and ignore it.
func WithStore(store ports.StateStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger; log.Default() is used otherwise.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
