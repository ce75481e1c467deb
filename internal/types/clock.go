package types

import "time"

// Clock abstracts time for testability. Every component that needs "now"
// receives a Clock (or an explicit instant) instead of calling time.Now
// directly, so tests can pin the wall clock.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }
