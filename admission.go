package glide

import (
	"sync/atomic"
	"time"
)

// DefaultPermits is the default number of concurrently in-flight frames.
const DefaultPermits = 3

// admission bounds the number of in-flight frames with a counting permit.
//
// Capture callbacks acquire a permit before a frame is admitted; permits
// are released only when the frame's completion signal fires, never on
// submission, so a true processing backlog throttles intake. Callbacks
// that cannot acquire a permit within the configured wait drop the frame.
type admission struct {
	permits  chan struct{}
	capacity int
	inFlight atomic.Int64
}

func newAdmission(capacity int) *admission {
	if capacity <= 0 {
		capacity = DefaultPermits
	}
	a := &admission{
		permits:  make(chan struct{}, capacity),
		capacity: capacity,
	}
	for i := 0; i < capacity; i++ {
		a.permits <- struct{}{}
	}
	return a
}

// acquire takes a permit, blocking up to wait. A zero wait never blocks.
// Reports whether a permit was obtained.
func (a *admission) acquire(wait time.Duration) bool {
	select {
	case <-a.permits:
		a.inFlight.Add(1)
		return true
	default:
	}
	if wait <= 0 {
		return false
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-a.permits:
		a.inFlight.Add(1)
		return true
	case <-timer.C:
		return false
	}
}

// release returns a permit after a completion signal.
func (a *admission) release() {
	a.inFlight.Add(-1)
	select {
	case a.permits <- struct{}{}:
	default:
		// Releasing more permits than were acquired is a bug upstream.
	}
}

// InFlight returns the number of frames currently holding a permit.
func (a *admission) InFlight() int {
	return int(a.inFlight.Load())
}

// Capacity returns the permit capacity.
func (a *admission) Capacity() int {
	return a.capacity
}

// drainWait blocks until all permits are back or the timeout elapses.
// Used by Stop to let in-flight work complete before resetting state.
func (a *admission) drainWait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for a.InFlight() > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}
