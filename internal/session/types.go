package session

import "time"

// State is the timer lifecycle state
type State int

const (
	Idle    State = iota // Never started, or reset
	Running              // Ticking
	Stopped              // Stopped after running; EndTime is valid
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Handle identifies one run of the periodic tick. A tick carrying a handle
// other than the current one belongs to a cancelled run.
type Handle uint64

// Clock provides time information to the timer.
// This interface allows time to be mocked in tests.
type Clock interface {
	Now() time.Time
}

// RealClock provides actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock provides a settable time for testing.
type TestClock struct {
	CurrentTime time.Time
}

// Now returns the test time.
func (t *TestClock) Now() time.Time {
	return t.CurrentTime
}

// Advance moves the test time forward.
func (t *TestClock) Advance(d time.Duration) {
	t.CurrentTime = t.CurrentTime.Add(d)
}
