package main

import "time"

// scheduler abstracts the clock and one-shot timers so room tests can
// drive virtual time instead of sleeping.
type scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) stopper
}

// stopper is a cancelable timer handle. Stop reports whether the call
// prevented the timer from firing.
type stopper interface {
	Stop() bool
}

// systemScheduler is the wall-clock implementation used outside of tests.
type systemScheduler struct{}

func (systemScheduler) Now() time.Time {
	return time.Now()
}

func (systemScheduler) AfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}
