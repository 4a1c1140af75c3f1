package session

import (
	"fmt"
	"math"
	"time"
)

// Timer tracks one counting session. It does not schedule anything itself:
// Start hands out a Handle and the caller delivers ticks carrying it.
type Timer struct {
	clock Clock

	state     State
	startTime time.Time
	endTime   time.Time
	elapsed   time.Duration // As of the last tick or stop

	handle Handle // Current run; zero when not running
	next   Handle
}

// NewTimer creates an idle timer. A nil clock uses the system time.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Timer{clock: clock}
}

// Start begins a session unless one is already running. It reports false
// (and no handle) when the timer was already running.
func (t *Timer) Start() (Handle, bool) {
	if t.state == Running {
		return 0, false
	}

	t.next++
	t.handle = t.next
	t.state = Running
	t.startTime = t.clock.Now()
	t.endTime = time.Time{}
	t.elapsed = 0
	return t.handle, true
}

// Tick recomputes the elapsed time. It reports false for a stale handle or a
// timer that is not running, in which case the caller must stop ticking.
func (t *Timer) Tick(h Handle) bool {
	if t.state != Running || h != t.handle {
		return false
	}
	t.elapsed = t.clock.Now().Sub(t.startTime)
	return true
}

// Stop cancels the tick and records the end time. No-op unless running.
func (t *Timer) Stop() {
	if t.state != Running {
		return
	}
	t.handle = 0
	t.state = Stopped
	t.endTime = t.clock.Now()
	t.elapsed = t.endTime.Sub(t.startTime)
}

// Reset stops the timer and returns it to idle
func (t *Timer) Reset() {
	t.Stop()
	t.state = Idle
	t.startTime = time.Time{}
	t.endTime = time.Time{}
	t.elapsed = 0
}

// State returns the lifecycle state
func (t *Timer) State() State { return t.state }

// Running reports whether a tick handle is active
func (t *Timer) Running() bool { return t.state == Running }

// StartTime returns when the session started; zero if idle
func (t *Timer) StartTime() time.Time { return t.startTime }

// EndTime returns when the session stopped; zero unless stopped
func (t *Timer) EndTime() time.Time { return t.endTime }

// Elapsed returns the duration as of the last tick, or the full session
// once stopped
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// MinutesElapsed is the stopped session length in whole seconds divided by
// sixty. It is zero unless the timer has been stopped after a start.
func (t *Timer) MinutesElapsed() float64 {
	if t.state != Stopped {
		return 0
	}
	seconds := math.Round(t.endTime.Sub(t.startTime).Seconds())
	return seconds / 60
}

// Rate returns count per minute, or NaN when no time has elapsed
func Rate(count int, minutes float64) float64 {
	if minutes <= 0 {
		return math.NaN()
	}
	return float64(count) / minutes
}

// FormatElapsed renders a duration as "<m>m <s>s"
func FormatElapsed(d time.Duration) string {
	secs := int(math.Round(d.Seconds()))
	if secs < 0 {
		secs = 0
	}
	m := secs / 60
	s := secs - m*60
	return fmt.Sprintf("%dm %ds", m, s)
}
