// Package clock implements the monotonic tick counter described in spec
// §4.6 (component A). The counter itself is tiny; its value is the
// authoritative "now" that every other subsystem (accounting, ageing,
// alarms, FCFS/PBS tie-breaks) reads.
package clock

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Tick is one unit of the kernel's logical clock. It is not wall-clock
// time; it only advances when clockintr fires (see Kernel.ClockIntr in
// internal/kernel).
type Tick uint64

// Clock is the tick lock plus the ticks counter (`tickslock`/`ticks` in the
// original). The lock is a leaf per spec §5's global lock ordering: it may
// be acquired while holding the wait lock or a slot lock, but nothing is
// acquired while holding it.
type Clock struct {
	mu    sync.Mutex
	ticks Tick
}

// New returns a clock starting at tick 0.
func New() *Clock {
	return &Clock{}
}

// Now returns the current tick count.
func (c *Clock) Now() Tick {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Advance increments the tick counter by one and returns the new value.
// Called from clockintr on CPU 0 only (spec §4.6).
func (c *Clock) Advance() Tick {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.ticks
}

// MonotonicNanos reads the host monotonic clock directly, bypassing the
// logical tick counter. cmd/xv7sim's free-running mode uses this to pace
// real wall-clock ticks instead of spinning as fast as possible; nothing in
// the scheduling core itself depends on wall-clock time (spec's Non-goals
// exclude real-time guarantees).
func MonotonicNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}
