// Package system provides a real clock implementation.
package system

import "time"

// Clock implements scrape.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time. Runs are stamped in the operator's
// timezone (the CI workflow sets TZ=Asia/Seoul) so output names match the
// disclosure calendar.
func (Clock) Now() time.Time {
	return time.Now()
}
