package session

import "time"

// Scheduler arms one-shot deadline timers. The session owns at most one
// active handle at a time; tests substitute a manual implementation.
type Scheduler interface {
	// ScheduleOnce invokes fn once after d and returns a cancel function.
	// Cancelling after the timer fired is a no-op.
	ScheduleOnce(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

// NewScheduler returns the wall-clock Scheduler used outside tests.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) ScheduleOnce(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
