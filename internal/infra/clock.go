package infra

import "time"

// SystemClock implements domain.Clock using the OS wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
