package domain

// PomodoroStatus is a point-in-time snapshot of a pomodoro timer.
// The remaining fields are set only while the timer is active.
type PomodoroStatus struct {
	Active                 bool     `json:"active"`
	Phase                  Phase    `json:"phase"`
	CompletedPomodoros     int      `json:"completed_pomodoros"`
	Paused                 bool     `json:"paused,omitempty"`
	TimeRemainingSeconds   *float64 `json:"time_remaining_seconds,omitempty"`
	TimeRemainingFormatted string   `json:"time_remaining_formatted,omitempty"`
}

// CountdownStatus is a point-in-time snapshot of a countdown timer.
type CountdownStatus struct {
	Active                 bool     `json:"active"`
	Name                   string   `json:"name"`
	TimeRemainingSeconds   *float64 `json:"time_remaining_seconds,omitempty"`
	TimeRemainingFormatted string   `json:"time_remaining_formatted,omitempty"`
}

// TimerType distinguishes the two timers an agent owns.
type TimerType string

const (
	TimerTypeCountdown TimerType = "countdown"
	TimerTypePomodoro  TimerType = "pomodoro"
	TimerTypeAll       TimerType = "all"
)

// ValidateTimerType checks if a string is a known timer type.
// The empty string selects every timer.
func ValidateTimerType(s string) (TimerType, error) {
	switch TimerType(s) {
	case TimerTypeCountdown, TimerTypePomodoro, TimerTypeAll:
		return TimerType(s), nil
	case "":
		return TimerTypeAll, nil
	default:
		return "", ErrUnknownTimerType
	}
}

// TimerInfo describes one timer inside a Result listing.
type TimerInfo struct {
	TimerType              TimerType `json:"timer_type"`
	Name                   string    `json:"name,omitempty"`
	Phase                  Phase     `json:"phase,omitempty"`
	CompletedPomodoros     int       `json:"completed_pomodoros,omitempty"`
	TimeRemainingSeconds   *float64  `json:"time_remaining_seconds,omitempty"`
	TimeRemainingFormatted string    `json:"time_remaining_formatted,omitempty"`
}

// Result is returned by every command-surface operation.
// Failures are reported with Success false, never as errors.
type Result struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	TimerType       TimerType        `json:"timer_type,omitempty"`
	Action          string           `json:"action,omitempty"`
	Pomodoro        *PomodoroStatus  `json:"pomodoro,omitempty"`
	Countdown       *CountdownStatus `json:"countdown,omitempty"`
	ActiveTimers    []TimerInfo      `json:"active_timers,omitempty"`
	CancelledTimers []TimerInfo      `json:"cancelled_timers,omitempty"`
	Suggestion      string           `json:"suggestion,omitempty"`
	AirthResponse   string           `json:"airth_response,omitempty"`
}

// Failure builds a failed result from an error.
func Failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}
