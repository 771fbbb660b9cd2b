// Package debounce coalesces rapid updates into a single delivery after a
// quiet period.
package debounce

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Debouncer delivers the last pushed value once no new value has arrived
// for the configured delay. Each Push cancels the pending delivery and
// schedules a new one.
type Debouncer[T any] struct {
	clock   clock.WithDelayedExecution
	delay   time.Duration
	deliver func(T)

	mu      sync.Mutex
	timer   clock.Timer
	value   T
	pending bool
	gen     uint64
	stopped bool
}

// New creates a Debouncer calling deliver on settled values. A nil clock
// uses the real clock and a non-positive delay uses DefaultDelay.
func New[T any](clk clock.WithDelayedExecution, delay time.Duration, deliver func(T)) *Debouncer[T] {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{clock: clk, delay: delay, deliver: deliver}
}

// Delay returns the quiet period.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Push records v and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.value = v
	d.pending = true
	d.gen++
	gen := d.gen
	prev := d.timer
	d.timer = nil
	d.mu.Unlock()

	// The clock is never called with d.mu held: fake clocks run callbacks
	// under their own lock.
	if prev != nil {
		prev.Stop()
	}
	t := d.clock.AfterFunc(d.delay, func() { d.fire(gen) })

	d.mu.Lock()
	if d.gen == gen && !d.stopped {
		d.timer = t
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	t.Stop()
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.deliver(v)
}

// Pending returns the value awaiting delivery, if any.
func (d *Debouncer[T]) Pending() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.pending
}

// Flush delivers a pending value immediately. It reports whether a value
// was delivered.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.pending = false
	d.gen++
	t := d.timer
	d.timer = nil
	d.mu.Unlock()

	if t != nil {
		t.Stop()
	}
	d.deliver(v)
	return true
}

// Cancel drops any pending value. Later pushes are scheduled as usual.
// It reports whether a value was dropped.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	dropped := d.pending
	d.pending = false
	d.gen++
	t := d.timer
	d.timer = nil
	d.mu.Unlock()

	if t != nil {
		t.Stop()
	}
	return dropped
}

// Stop drops any pending value. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.pending = false
	d.gen++
	t := d.timer
	d.timer = nil
	d.mu.Unlock()

	if t != nil {
		t.Stop()
	}
}
