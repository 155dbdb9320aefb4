package timing

import "time"

// Limiter paces the frontend frame loop.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// DefaultFPS is the refresh rate of the terminal UI. The remote machine is
// stepped on demand, so the UI only needs to keep up with key presses.
const DefaultFPS = 30

// FrameDuration returns the duration of a single frame at fps frames per
// second. Non-positive rates fall back to DefaultFPS.
func FrameDuration(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
