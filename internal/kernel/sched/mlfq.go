package sched

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// numQueues is the number of MLFQ priority levels, 0 (highest) .. 4
// (lowest), spec §4.5.
const numQueues = 5

// quantum returns the tick budget for queue q: 2^q.
func quantum(q int) int { return 1 << uint(q) }

// MLFQ is the Multi-Level Feedback Queue policy (spec §4.5): five queues,
// quantum 2^queue, demotion on quantum expiry, preemption (without
// demotion) when a higher-priority process is RUNNABLE, ageing promotion
// for processes that have waited too long.
type MLFQ struct{}

func (MLFQ) Name() string { return "mlfq" }

func (MLFQ) OnAllocProc(p *proc.Process) {
	p.Policy.Queue = 0
	p.Policy.NumTicks = 0
}

// OnBecomeRunnable resets the quantum counter and residency clock on every
// wake into RUNNABLE (spec §4.5's "On any wake into RUNNABLE, reset
// numTicks and last_tick"), without touching queue — only OnYield's
// quantum-expiry check and Ageing ever change queue.
func (MLFQ) OnBecomeRunnable(p *proc.Process, now clock.Tick) {
	p.Policy.NumTicks = 0
	p.Policy.LastTick = now
}

// OnBecomeRunning sets last_tick and clears numTicks at selection time,
// matching the original's currProc->last_tick = ticks; currProc->numTicks =
// 0 done immediately before currProc->state = RUNNING.
func (MLFQ) OnBecomeRunning(p *proc.Process, now clock.Tick) {
	p.Policy.LastTick = now
	p.Policy.NumTicks = 0
}

// OnYield demotes a process whose quantum has expired, then resets numTicks
// and last_tick unconditionally — the same sequence as yield()'s #ifdef
// MLFQ block.
func (MLFQ) OnYield(p *proc.Process, now clock.Tick) {
	if p.Policy.Queue < numQueues-1 && p.Policy.NumTicks >= quantum(p.Policy.Queue) {
		p.Policy.Queue++
	}
	p.Policy.LastTick = now
	p.Policy.NumTicks = 0
}

// OnTick increments numTicks for the RUNNING process and reports whether it
// should yield: either its quantum has expired, or some other RUNNABLE
// process sits in a strictly higher-priority (lower-numbered) queue — the
// same two conditions usertrap/kerneltrap check under #ifdef MLFQ.
func (MLFQ) OnTick(t *proc.Table, p *proc.Process, now clock.Tick) bool {
	p.Policy.NumTicks++
	if p.Policy.NumTicks >= quantum(p.Policy.Queue) {
		return true
	}
	for _, other := range t.Slots() {
		if other == p {
			continue
		}
		other.Lock()
		preempt := other.State == proc.Runnable && other.Policy.Queue < p.Policy.Queue
		other.Unlock()
		if preempt {
			return true
		}
	}
	return false
}

// Ageing promotes RUNNABLE processes that have waited too long without
// being scheduled: either ticks-in_tick has reached the current queue's
// quantum, or the process has been resident in its queue for 30 ticks
// without promotion. Spec §9's resolved open question: the original
// increments queue (p->queue++) under the first condition while commenting
// it as a promotion; this reads that as the intended promotion (a queue
// decrement), and floors at queue 0 rather than let it go negative — the
// original's own guard (queue < 4) does not otherwise prevent that.
func (MLFQ) Ageing(t *proc.Table, now clock.Tick) {
	for _, p := range t.Slots() {
		p.Lock()
		if p.State != proc.Runnable {
			p.Unlock()
			continue
		}
		q := p.Policy.Queue
		switch {
		case now-p.InTick >= clock.Tick(quantum(q)) && q < numQueues-1:
			if q > 0 {
				p.Policy.Queue = q - 1
			}
			p.Policy.LastTick = now
		case now-p.Policy.LastTick >= 30 && q > 0:
			p.Policy.Queue = q - 1
			p.Policy.LastTick = now
		}
		p.Unlock()
	}
}

// Pick selects the RUNNABLE process in the lowest-numbered (highest
// priority) queue, tie-broken by smallest in_tick.
func (MLFQ) Pick(t *proc.Table) (*proc.Process, bool) {
	var best *proc.Process
	for _, p := range t.Slots() {
		p.Lock()
		if p.State != proc.Runnable {
			p.Unlock()
			continue
		}
		if best == nil {
			best = p
			continue
		}
		switch {
		case p.Policy.Queue < best.Policy.Queue:
			best.Unlock()
			best = p
		case p.Policy.Queue == best.Policy.Queue && p.InTick < best.InTick:
			best.Unlock()
			best = p
		default:
			p.Unlock()
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
