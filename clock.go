package chronosync

import "time"

// Clock is the source of wall-clock time and the scheduling primitive used
// between polls.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the host's local clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now().Local() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
