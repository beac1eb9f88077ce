package domain

import "errors"

var (
	ErrAlreadyActive       = errors.New("timer is already running")
	ErrNotActive           = errors.New("no active timer")
	ErrNothingToResume     = errors.New("no paused timer to resume")
	ErrNothingToCancel     = errors.New("no timer to cancel")
	ErrNothingToSkip       = errors.New("no pomodoro phase to skip")
	ErrUnknownPhase        = errors.New("unknown timer phase")
	ErrUnknownAction       = errors.New("unknown pomodoro action")
	ErrUnknownTimerType    = errors.New("unknown timer type")
	ErrUnknownEvent        = errors.New("unknown timer event")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrInvalidConfig       = errors.New("invalid pomodoro configuration")
	ErrUnrecognizedCommand = errors.New("unrecognized timer command")
)
