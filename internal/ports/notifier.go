package ports

import "github.com/xvierd/tec-office/internal/domain"

// Notifier tells the user that a timer finished.
// This is a driven port (implemented by adapters).
type Notifier interface {
	// NotifyPhaseComplete is called when a pomodoro phase ends and the next one is pending.
	NotifyPhaseComplete(completed, next domain.Phase, completedPomodoros int) error

	// NotifyCountdownComplete is called when a named countdown reaches zero.
	NotifyCountdownComplete(name string) error
}
