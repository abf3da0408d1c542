package utils

import "time"

// Timer measures the wall-clock time of one operation. [NewTimer] starts it.
type Timer struct {
	start    time.Time
	duration time.Duration
}

// NewTimer returns a running timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop captures the time elapsed since NewTimer and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the value captured by the last Stop, or zero.
func (t *Timer) Duration() time.Duration {
	return t.duration
}
