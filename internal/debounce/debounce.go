// Package debounce provides a cancellable delayed call that coalesces bursts.
//
// Each Schedule replaces the pending value and restarts the quiet period;
// the callback runs once with the last value after the period elapses
// without another Schedule. Search input and favorites persistence both
// use it.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays calls to fn until delay has passed without a new Schedule.
// Calls to fn never overlap, and they happen in the order their values were
// taken, so a later value is never overwritten by an earlier one.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	value   T
	pending bool
	seq     uint64
	stopped bool

	// runMu serializes fn and is held while the pending value is taken.
	runMu sync.Mutex
}

// New creates a debouncer that calls fn after delay of quiet.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Delay returns the quiet period.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending value with v and restarts the quiet period.
// It is a no-op after Stop or Discard.
func (d *Debouncer[T]) Schedule(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.value = v
	d.pending = true
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

// Flush runs the pending call immediately on the calling goroutine and
// reports whether there was one. It must not be called from fn.
func (d *Debouncer[T]) Flush() bool {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.cancelLocked()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Stop flushes any pending call and refuses further scheduling.
func (d *Debouncer[T]) Stop() {
	d.Flush()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancelLocked()
}

// Discard drops any pending call without running it and refuses further
// scheduling. It waits for a call already in progress to return.
func (d *Debouncer[T]) Discard() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancelLocked()
}

func (d *Debouncer[T]) cancelLocked() bool {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	was := d.pending
	var zero T
	d.value = zero
	d.pending = false
	d.seq++
	return was
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	var zero T
	d.value = zero
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}
