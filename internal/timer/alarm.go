// Package timer implements the countdown and pomodoro timers owned by an agent.
//
// Each timer owns at most one pending wake-up. Every operation that changes
// the countdown (start, pause, resume, skip, cancel) disarms the previous
// wake-up before arming a new one, and a wake-up that fires after being
// disarmed is discarded, so completion is handled at most once.
package timer

import "time"

// wakeup is a cancellable delayed task. It is not safe for concurrent use;
// the owning timer guards it with its own mutex.
type wakeup struct {
	t     *time.Timer
	token uint64
}

// arm disarms any pending wake-up and schedules fn to run after d.
// fn receives the token it was armed with.
func (w *wakeup) arm(d time.Duration, fn func(token uint64)) {
	w.disarm()
	if d < 0 {
		d = 0
	}
	tok := w.token
	w.t = time.AfterFunc(d, func() { fn(tok) })
}

// disarm cancels the pending wake-up. A callback already in flight will
// fail the claim check because the token moves on.
func (w *wakeup) disarm() {
	if w.t != nil {
		w.t.Stop()
		w.t = nil
	}
	w.token++
}

// claim reports whether token belongs to the pending wake-up and, if so,
// marks it consumed.
func (w *wakeup) claim(token uint64) bool {
	if w.t == nil || token != w.token {
		return false
	}
	w.t = nil
	w.token++
	return true
}

// pending returns true if a wake-up is armed.
func (w *wakeup) pending() bool {
	return w.t != nil
}
