package sched

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// FCFS is the First-Come-First-Served policy (spec §4.5): select the
// RUNNABLE slot with the smallest in_tick, tie-broken by scan order.
// Non-preemptive — timer ticks never force a yield.
type FCFS struct{}

func (FCFS) Name() string { return "fcfs" }

func (FCFS) OnAllocProc(p *proc.Process)                      {}
func (FCFS) OnBecomeRunnable(p *proc.Process, now clock.Tick) {}
func (FCFS) OnBecomeRunning(p *proc.Process, now clock.Tick)  {}
func (FCFS) OnYield(p *proc.Process, now clock.Tick)          {}
func (FCFS) Ageing(t *proc.Table, now clock.Tick)             {}
func (FCFS) OnTick(t *proc.Table, p *proc.Process, now clock.Tick) bool {
	return false
}

// Pick holds the current best candidate's lock while scanning and releases
// it only when a better (earlier in_tick) candidate is found, matching the
// original's to_run bookkeeping.
func (FCFS) Pick(t *proc.Table) (*proc.Process, bool) {
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
		if p.InTick < best.InTick {
			best.Unlock()
			best = p
			continue
		}
		p.Unlock()
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
