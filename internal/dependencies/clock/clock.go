package clock

import "time"

// Clock stamps join times and moves; mocked in tests
type Clock interface {
	Now() time.Time
}

// UTCClock implements Clock using the system clock in UTC, so stored
// timestamps compare equal after a JSON round trip
type UTCClock struct{}

// New creates a new UTCClock
func New() *UTCClock {
	return &UTCClock{}
}

// Now returns the current time truncated to milliseconds
func (c *UTCClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
