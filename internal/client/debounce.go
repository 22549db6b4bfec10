package client

import (
	"sync"
	"time"
)

// DebounceState is the explicit state of a Debouncer.
type DebounceState int

const (
	// StateIdle means no fetch is pending or running.
	StateIdle DebounceState = iota
	// StatePending means a fetch will fire when the deadline lapses.
	StatePending
	// StateFetching means the callback is currently running.
	StateFetching
)

// Debouncer coalesces bursts of signals (keystrokes, change events) into one
// callback invocation after a quiet period. A signal during Pending resets
// the deadline; a signal during Fetching queues exactly one follow-up run.
// Close releases the timer, the equivalent of cancel-on-unmount.
type Debouncer struct {
	mu     sync.Mutex
	state  DebounceState
	delay  time.Duration
	fire   func()
	timer  *time.Timer
	dirty  bool
	closed bool
}

// NewDebouncer creates a Debouncer that invokes fire after delay of quiet.
func NewDebouncer(delay time.Duration, fire func()) *Debouncer {
	return &Debouncer{delay: delay, fire: fire}
}

// Signal records fresh input and (re)arms the deadline.
func (d *Debouncer) Signal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	switch d.state {
	case StateIdle:
		d.state = StatePending
		d.timer = time.AfterFunc(d.delay, d.lapse)
	case StatePending:
		d.timer.Reset(d.delay)
	case StateFetching:
		d.dirty = true
	}
}

// lapse runs when the deadline passes without a new signal.
func (d *Debouncer) lapse() {
	d.mu.Lock()
	if d.closed || d.state != StatePending {
		d.mu.Unlock()
		return
	}
	d.state = StateFetching
	d.mu.Unlock()

	d.fire()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.dirty {
		// Input arrived mid-fetch; go around once more.
		d.dirty = false
		d.state = StatePending
		d.timer = time.AfterFunc(d.delay, d.lapse)
		return
	}
	d.state = StateIdle
}

// State returns the current state.
func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Close stops any pending timer and ignores further signals.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.state = StateIdle
}
