// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/tec-office/internal/config"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg  *config.NotificationConfig
	send func(title, message string, sound bool) error
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{cfg: cfg, send: desktop}
}

func desktop(title, message string, sound bool) error {
	if sound {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.send(title, message, n.cfg.Sound)
}

// NotifyPhaseComplete announces the end of a pomodoro phase.
func (n *Notifier) NotifyPhaseComplete(completed, next domain.Phase, completedPomodoros int) error {
	if completed == domain.PhaseWork {
		title := "🍅 Pomodoro Complete!"
		message := fmt.Sprintf("Pomodoro #%d done. Up next: %s.", completedPomodoros, next.Label())
		return n.Notify(title, message)
	}
	title := "☕ Break Over!"
	message := fmt.Sprintf("Your %s is complete. Ready to focus?", completed.Label())
	return n.Notify(title, message)
}

// NotifyCountdownComplete announces a finished countdown.
func (n *Notifier) NotifyCountdownComplete(name string) error {
	return n.Notify("⏰ Time's up!", fmt.Sprintf("%s is done.", name))
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
