// Package debounce delays a call until its triggers pause.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 400 * time.Millisecond

// Handle is a scheduled call that can be cancelled before it runs.
type Handle struct {
	timer *time.Timer
}

// Schedule runs fn on its own goroutine after delay.
func Schedule(delay time.Duration, fn func()) *Handle {
	return &Handle{timer: time.AfterFunc(delay, fn)}
}

// Cancel stops the call. It reports false if the call already started or
// was cancelled before. Cancel on a nil Handle is a no-op.
func (h *Handle) Cancel() bool {
	if h == nil {
		return false
	}
	return h.timer.Stop()
}

// Debouncer calls fn with the latest value once Trigger has not been
// called for the configured delay. Every Trigger and Now is stamped with a
// strictly increasing sequence number, passed to fn, so callers can order
// results by when they were asked for rather than when they arrived.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(seq uint64, v T)
	pending *Handle
	seq     uint64
	stopped bool
}

// New returns a Debouncer. A non-positive delay means DefaultDelay.
func New[T any](delay time.Duration, fn func(seq uint64, v T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Delay returns the quiet period.
func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Trigger replaces any pending call with one for v and returns its
// sequence number. It returns 0 once the Debouncer is stopped.
func (d *Debouncer[T]) Trigger(v T) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return 0
	}

	d.pending.Cancel()
	d.seq++
	seq := d.seq

	var h *Handle
	h = Schedule(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		if d.pending != h {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		d.fn(seq, v)
	})
	d.pending = h
	return seq
}

// Now cancels any pending call and calls fn with v on the caller's
// goroutine before returning.
func (d *Debouncer[T]) Now(v T) uint64 {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return 0
	}
	d.pending.Cancel()
	d.pending = nil
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	d.fn(seq, v)
	return seq
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok := d.pending.Cancel()
	d.pending = nil
	return ok
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending call and ignores every later Trigger and Now.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending.Cancel()
	d.pending = nil
	d.stopped = true
}
