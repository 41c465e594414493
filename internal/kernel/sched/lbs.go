package sched

import (
	"sync"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// lcg is the Park-Miller 7^5 multiplicative generator mod 2^31-1, carried
// verbatim (constants and overflow-avoiding arithmetic) from do_rand in
// original_source/kernel/proc.c: "Random number generators: good ones are
// hard to find", Park and Miller, CACM 31(10), 1988.
type lcg struct {
	state int64
}

func newLCG() *lcg { return &lcg{state: 1} }

func (r *lcg) next() int64 {
	x := (r.state % 0x7ffffffe) + 1
	hi := x / 127773
	lo := x % 127773
	x = 16807*lo - 2836*hi
	if x < 0 {
		x += 0x7fffffff
	}
	x--
	r.state = x
	return x
}

// LBS is the Lottery policy (spec §4.5): a RUNNABLE process's chance of
// selection is proportional to its ticket count, drawn from total_tickets
// maintained lazily across every RUNNABLE-entry and RUNNABLE-exit.
type LBS struct {
	mu    sync.Mutex
	total int
	rng   *lcg
}

// NewLBS returns an LBS policy with the generator seeded to 1, matching
// rand_next's initial value in the original.
func NewLBS() *LBS {
	return &LBS{rng: newLCG()}
}

func (l *LBS) Name() string { return "lbs" }

func (l *LBS) OnAllocProc(p *proc.Process) { p.Policy.Tickets = 1 }

// OnBecomeRunnable adds p's tickets back into the pool: covers fork, wakeup,
// kill-induced wake, and (via OnYield, which does the same thing) yield.
func (l *LBS) OnBecomeRunnable(p *proc.Process, now clock.Tick) {
	l.mu.Lock()
	l.total += p.Policy.Tickets
	l.mu.Unlock()
}

// OnBecomeRunning subtracts the winner's tickets, matching the original's
// "RUNNABLE→RUNNING transition: subtract winner's tickets" done right where
// scheduler() sets state = RUNNING.
func (l *LBS) OnBecomeRunning(p *proc.Process, now clock.Tick) {
	l.mu.Lock()
	l.total -= p.Policy.Tickets
	l.mu.Unlock()
}

func (l *LBS) OnYield(p *proc.Process, now clock.Tick) {
	l.mu.Lock()
	l.total += p.Policy.Tickets
	l.mu.Unlock()
}

func (l *LBS) Ageing(t *proc.Table, now clock.Tick) {}

// OnTick always preempts: LBS draws a fresh winner every tick.
func (l *LBS) OnTick(t *proc.Table, p *proc.Process, now clock.Tick) bool { return true }

// Pick draws x = rand() mod total_tickets + 1 and walks RUNNABLE slots
// accumulating a prefix sum until x falls within the current slot's range.
// Panics if the ticket total has gone negative, matching the original's
// "Negative Tickets" panic at the top of the #ifdef LBS scheduling block.
func (l *LBS) Pick(t *proc.Table) (*proc.Process, bool) {
	l.mu.Lock()
	total := l.total
	if total < 0 {
		l.mu.Unlock()
		panic("sched: negative ticket total")
	}
	if total == 0 {
		l.mu.Unlock()
		return nil, false
	}
	x := int(l.rng.next()%int64(total)) + 1
	l.mu.Unlock()

	prefix := 0
	for _, p := range t.Slots() {
		p.Lock()
		if p.State != proc.Runnable {
			p.Unlock()
			continue
		}
		if x <= prefix+p.Policy.Tickets {
			return p, true
		}
		prefix += p.Policy.Tickets
		p.Unlock()
	}
	return nil, false
}

// SetTickets implements settickets(n): sets the calling process's own
// ticket count and returns the previous value. The original's defensive
// "panic if total_tickets < 0" check is preserved even though reassigning a
// RUNNING process's own ticket count never itself mutates the shared total
// (only OnBecomeRunnable/OnBecomeRunning/OnYield do) until it next leaves
// RUNNING.
func (l *LBS) SetTickets(p *proc.Process, n int) int {
	old := p.Policy.Tickets
	p.Policy.Tickets = n
	l.mu.Lock()
	total := l.total
	l.mu.Unlock()
	if total < 0 {
		panic("sched: negative ticket total")
	}
	return old
}
