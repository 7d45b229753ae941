// Package progress tracks a single long-running operation for a casual poller.
// One goroutine writes, any goroutine may read.
package progress

import (
	"fmt"
	"sync/atomic"
)

// State is the phase of the tracked operation.
type State int

const (
	// Idle means nothing has started since the last reset.
	Idle State = iota
	// Running means the operation is in flight; Fraction is meaningful.
	Running
	// Done means the operation finished. Fraction is 1.
	Done
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of progress.
type Snapshot struct {
	State    State
	Fraction float64
}

// Tracker publishes snapshots atomically. The zero value is Idle.
type Tracker struct {
	v atomic.Pointer[Snapshot]
}

// Load returns the latest snapshot.
func (t *Tracker) Load() Snapshot {
	if s := t.v.Load(); s != nil {
		return *s
	}
	return Snapshot{State: Idle}
}

// Reset returns the tracker to Idle.
func (t *Tracker) Reset() {
	t.v.Store(&Snapshot{State: Idle})
}

// Start moves to Running(0).
func (t *Tracker) Start() {
	t.v.Store(&Snapshot{State: Running})
}

// Advance publishes Running(f). f is clamped to [0,1] and never moves backwards.
// Ignored unless Running.
func (t *Tracker) Advance(f float64) {
	cur := t.Load()
	if cur.State != Running {
		return
	}
	if f < cur.Fraction {
		f = cur.Fraction
	}
	if f > 1 {
		f = 1
	}
	t.v.Store(&Snapshot{State: Running, Fraction: f})
}

// Finish moves to Done.
func (t *Tracker) Finish() {
	t.v.Store(&Snapshot{State: Done, Fraction: 1})
}
