package sched

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// defaultPriority is the static priority assigned by allocproc, spec §3.
const defaultPriority = 60

// PBS is the Priority-Based policy with ageing-by-behaviour (spec §4.5):
// selection minimises dynamic priority, then num_sched, then in_tick.
// Non-preemptive on the timer.
type PBS struct{}

func (PBS) Name() string { return "pbs" }

func (PBS) OnAllocProc(p *proc.Process) { p.Policy.Priority = defaultPriority }

func (PBS) OnBecomeRunnable(p *proc.Process, now clock.Tick) {}

// OnBecomeRunning increments num_sched and resets the running/sleeping
// counters used by niceness, matching the original's selection-time
// bookkeeping (done before state is flipped to RUNNING).
func (PBS) OnBecomeRunning(p *proc.Process, now clock.Tick) {
	p.Policy.NumSched++
	p.Policy.RunningTicks = 0
	p.Policy.SleepingTicks = 0
}

func (PBS) OnYield(p *proc.Process, now clock.Tick) {}

func (PBS) Ageing(t *proc.Table, now clock.Tick) {}

// OnTick never preempts: PBS is non-preemptive on the timer.
func (PBS) OnTick(t *proc.Table, p *proc.Process, now clock.Tick) bool { return false }

// niceness is 5 for a process never yet scheduled, else
// (sleeping_ticks*10)/(running_ticks+sleeping_ticks). The original divides
// unconditionally once num_sched != 0; guarded here against the
// zero-denominator edge case immediately after selection, before any tick
// has been accounted against the new running/sleeping counters.
func niceness(p *proc.Process) int {
	if p.Policy.NumSched == 0 {
		return 5
	}
	total := p.Policy.RunningTicks + p.Policy.SleepingTicks
	if total == 0 {
		return 5
	}
	return (p.Policy.SleepingTicks * 10) / total
}

func clamp(v, lo, hi int) int { return maxInt(lo, minInt(v, hi)) }

// dynamicPriority is DP(p) = clamp(priority - niceness + 5, 0, 100); lower
// wins.
func dynamicPriority(p *proc.Process) int {
	return clamp(p.Policy.Priority-niceness(p)+5, 0, 100)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Pick selects the RUNNABLE process minimising (DP, num_sched, in_tick)
// lexicographically (spec's PBS selection law, §8 property 4).
func (PBS) Pick(t *proc.Table) (*proc.Process, bool) {
	var best *proc.Process
	var bestDP int
	for _, p := range t.Slots() {
		p.Lock()
		if p.State != proc.Runnable {
			p.Unlock()
			continue
		}
		if best == nil {
			best, bestDP = p, dynamicPriority(p)
			continue
		}
		dp := dynamicPriority(p)
		switch {
		case dp < bestDP:
			best.Unlock()
			best, bestDP = p, dp
		case dp == bestDP && (p.Policy.NumSched < best.Policy.NumSched ||
			(p.Policy.NumSched == best.Policy.NumSched && p.InTick < best.InTick)):
			best.Unlock()
			best, bestDP = p, dp
		default:
			p.Unlock()
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// SetPriority implements set_priority(new, pid): rejects a requested
// priority outside [0,100] with ErrInvalidPriority (the target is left
// unchanged), otherwise swaps it into the target, and — per spec §9's
// resolution of the original's locking bug (it calls yield() while still
// holding the target's lock) — yields the caller, not the target, only
// after the target's lock has been released.
func (PBS) SetPriority(t *proc.Table, caller *proc.Process, pid, newPriority int, now clock.Tick) (int, error) {
	if newPriority < 0 || newPriority > 100 {
		return -1, ErrInvalidPriority
	}

	var target *proc.Process
	for _, q := range t.Slots() {
		q.Lock()
		if q.PID == pid {
			target = q
			break
		}
		q.Unlock()
	}
	if target == nil {
		return -1, ErrNoSuchProcess
	}

	old := target.Policy.Priority
	target.Policy.Priority = newPriority
	lowered := newPriority < old
	if lowered {
		target.Policy.RunningTicks = 0
		target.Policy.SleepingTicks = 0
	}
	target.Unlock()

	if lowered && caller != nil {
		Yield(caller, PBS{}, now)
	}
	return old, nil
}
