// Package system provides wall clocks for attempt deadlines.
package system

import "time"

// Clock implements article.Clock using time.Now, optionally shifted.
type Clock struct {
	offset time.Duration
}

// New creates a clock reading real UTC time.
func New() *Clock {
	return &Clock{}
}

// Offset creates a clock that runs d ahead of real time (behind when d is
// negative). A negative offset makes every computed deadline already expired.
func Offset(d time.Duration) *Clock {
	return &Clock{offset: d}
}

// Now returns the current time in UTC.
func (c Clock) Now() time.Time {
	return time.Now().Add(c.offset).UTC()
}
