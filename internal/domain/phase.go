package domain

import "fmt"

// Phase represents a step in the pomodoro cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// StartablePhases lists the phases a timer can count down.
var StartablePhases = []Phase{
	PhaseWork,
	PhaseShortBreak,
	PhaseLongBreak,
}

// ValidatePhase checks if a string names a phase that can be started.
func ValidatePhase(s string) (Phase, error) {
	p := Phase(s)
	for _, valid := range StartablePhases {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of work, short_break, long_break", ErrUnknownPhase, s)
}

// Label returns a human-readable label.
func (p Phase) Label() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseWork:
		return "Work"
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// IsBreak returns true for either break phase.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}
