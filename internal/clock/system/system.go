// Package system provides the wall clock used outside tests.
package system

import "time"

// Clock implements mission.Clock using time.Now in UTC, so sitemap dates are
// computed on the same calendar day regardless of the build host's zone.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
