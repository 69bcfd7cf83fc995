package ports

import "time"

// TimeProvider abstracts time operations for testability. The pipeline uses
// it for retry backoff and report timing; the renderer uses it for the
// generated-on subtitle.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
}

// RealTimeProvider implements TimeProvider using the standard time package
type RealTimeProvider struct{}

// NewRealTimeProvider creates a new real time provider implementation
func NewRealTimeProvider() TimeProvider {
	return &RealTimeProvider{}
}

// Now returns the current time
func (tp *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t
func (tp *RealTimeProvider) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Sleep pauses execution for the given duration
func (tp *RealTimeProvider) Sleep(d time.Duration) {
	time.Sleep(d)
}
