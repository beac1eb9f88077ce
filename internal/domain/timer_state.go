package domain

import (
	"fmt"
	"time"
)

// PomodoroConfig holds the durations and cadence of a pomodoro cycle.
type PomodoroConfig struct {
	WorkDuration       time.Duration
	ShortBreakDuration time.Duration
	LongBreakDuration  time.Duration
	LongBreakInterval  int
}

// DefaultPomodoroConfig returns the standard pomodoro configuration.
func DefaultPomodoroConfig() PomodoroConfig {
	return PomodoroConfig{
		WorkDuration:       25 * time.Minute,
		ShortBreakDuration: 5 * time.Minute,
		LongBreakDuration:  15 * time.Minute,
		LongBreakInterval:  4,
	}
}

// Validate checks that every duration and the long break interval are positive.
func (c PomodoroConfig) Validate() error {
	if c.WorkDuration <= 0 || c.ShortBreakDuration <= 0 || c.LongBreakDuration <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}
	if c.LongBreakInterval <= 0 {
		return fmt.Errorf("%w: long break interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// DurationFor returns the countdown length of a phase.
func (c PomodoroConfig) DurationFor(p Phase) (time.Duration, error) {
	switch p {
	case PhaseWork:
		return c.WorkDuration, nil
	case PhaseShortBreak:
		return c.ShortBreakDuration, nil
	case PhaseLongBreak:
		return c.LongBreakDuration, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, p)
	}
}

// NextPhase returns the phase entered after `completed` finishes.
// completedPomodoros is the count after any increment for a finished work phase.
func (c PomodoroConfig) NextPhase(completed Phase, completedPomodoros int) Phase {
	switch completed {
	case PhaseWork:
		if completedPomodoros%c.LongBreakInterval == 0 {
			return PhaseLongBreak
		}
		return PhaseShortBreak
	case PhaseShortBreak, PhaseLongBreak:
		return PhaseWork
	default:
		return completed
	}
}

// TimerState is the persisted record of a pomodoro timer, one per user.
// EndTime is set only while Active; RemainingSeconds only while paused.
type TimerState struct {
	WorkMinutes        float64    `json:"work_minutes"`
	ShortBreakMinutes  float64    `json:"short_break_minutes"`
	LongBreakMinutes   float64    `json:"long_break_minutes"`
	LongBreakInterval  int        `json:"long_break_interval"`
	CompletedPomodoros int        `json:"completed_pomodoros"`
	CurrentPhase       Phase      `json:"current_phase"`
	Active             bool       `json:"active"`
	EndTime            *time.Time `json:"end_time"`
	RemainingSeconds   float64    `json:"remaining_seconds,omitempty"`
	LastUpdated        time.Time  `json:"last_updated"`
}

// Remaining returns the paused remaining duration.
func (s TimerState) Remaining() time.Duration {
	return time.Duration(s.RemainingSeconds * float64(time.Second))
}

// Config rebuilds the pomodoro configuration carried by the record.
func (s TimerState) Config() PomodoroConfig {
	return PomodoroConfig{
		WorkDuration:       MinutesToDuration(s.WorkMinutes),
		ShortBreakDuration: MinutesToDuration(s.ShortBreakMinutes),
		LongBreakDuration:  MinutesToDuration(s.LongBreakMinutes),
		LongBreakInterval:  s.LongBreakInterval,
	}
}

// MinutesToDuration converts fractional minutes to a duration.
func MinutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

// DurationToMinutes converts a duration to fractional minutes.
func DurationToMinutes(d time.Duration) float64 {
	return d.Minutes()
}

// FormatRemaining formats a duration as MM:SS, truncating partial seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", m, s)
}
